// Package ui implements a command-line user interface using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/nativeio/internal/queue"
)

type progressProvider interface {
	Progress() queue.Progress
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	progress progressProvider
	program  *tea.Program

	LogWriter *TeaLogWriter

	Initialized atomic.Bool
	Failed      atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler], showing
// the [queue.Progress] reported by progress under the given title.
func NewHandler(ctx context.Context, cancel context.CancelFunc, title string, progress progressProvider) *Handler {
	handler := &Handler{
		progress: progress,
	}

	model := NewTeaModel(handler, title, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Quit asks the [tea.Program] to exit, as when the work is done.
func (uiHandler *Handler) Quit() {
	uiHandler.program.Quit()
}
