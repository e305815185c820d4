// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/netsession/internal/dispatch"
	"github.com/palemoky/netsession/internal/ui/input"
	"github.com/palemoky/netsession/internal/ui/model"
	"github.com/palemoky/netsession/internal/ui/view"
)

// NewApp creates the terminal app with its view renderer and key handler wired in.
func NewApp(opts model.Options, queue *dispatch.Queue) *model.App {
	app := model.NewApp(opts, queue)
	app.SetViewRenderer(view.Render)
	app.SetKeyHandler(input.HandleKeyPress)
	return app
}
