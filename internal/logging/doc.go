// Package logging provides structured JSON logging for framegraph.
//
// Loggers wrap log/slog and carry persistent attributes that follow a
// capture through the pipeline:
//
//	logger, err := logging.NewLoggerWithRotation(stateDir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	buildLog := logger.WithCapture("frame.json").WithBuild(id)
//	buildLog.WithStage("usages").Debug("texture scanned", "resource", "ResourceId::12")
//
// Output lines look like:
//
//	{"time":"...","level":"DEBUG","msg":"texture scanned","capture":"frame.json","build_id":"...","stage":"usages","resource":"ResourceId::12"}
//
// Rotated files are named framegraph.log.1 (newest) through framegraph.log.N,
// with a .gz suffix when compression is enabled.
//
// Use [NopLogger] in tests and [Logger.Slog] to hand the same handler to
// libraries that take a *slog.Logger.
package logging
