// Package msg defines the messages of the viewer's Bubbletea event loop and
// the commands that produce them.
//
// Commands wrap the blocking workspace operations (load, rebuild, export) so
// the event loop never waits on disk or on a build.
package msg
