package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/tui/msg"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

// Options configures the viewer.
type Options struct {
	// Watch reloads the capture when it changes on disk.
	Watch bool
	// ExportDir receives files written by the export key (default: ".").
	ExportDir string
	// ProgramOptions are passed to Bubbletea, mostly for tests.
	ProgramOptions []tea.ProgramOption
}

// App wraps the Bubbletea program.
type App struct {
	program *tea.Program
	model   Model
	ws      *workspace.Workspace
	opts    Options
}

// New creates the viewer for ws.
func New(ctx context.Context, ws *workspace.Workspace, opts Options) *App {
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	return &App{
		model: NewModel(ctx, ws, opts.ExportDir),
		ws:    ws,
		opts:  opts,
	}
}

// forwarded lists the workspace events the viewer reacts to.
var forwarded = []string{
	event.TypeCaptureChanged,
	event.TypeBuildStarted,
	event.TypeBuildProgress,
	event.TypeBuildFinished,
	event.TypeBuildFailed,
}

// Run starts the viewer and blocks until it exits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	popts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, a.opts.ProgramOptions...)
	a.program = tea.NewProgram(a.model, popts...)

	bus := a.ws.Bus()
	sub := bus.Subscribe(func(e event.Event) {
		a.program.Send(msg.BusMsg{Event: e})
	}, forwarded...)
	defer bus.Unsubscribe(sub)

	if a.opts.Watch {
		if err := a.ws.Watch(ctx); err != nil {
			return err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			a.program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	a.ws.Logger().Info("viewer started", "watch", a.opts.Watch)
	_, err := a.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	return err
}
