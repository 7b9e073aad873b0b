package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// Watch runs the watch view until the user quits or ctx is done.
// Every snapshot ctrl publishes is forwarded to the program.
func Watch(ctx context.Context, ctrl *session.Controller, actions Actions, opts ...tea.ProgramOption) error {
	model := NewWatchModel(ctrl.CurrentSnapshot(), actions, DefaultStyles())

	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	sub := ctrl.Subscribe(func(snap session.Snapshot) {
		program.Send(SnapshotMsg{Snapshot: snap})
	})
	defer sub.Unsubscribe()

	// a snapshot published before the subscription would otherwise be missed
	go program.Send(SnapshotMsg{Snapshot: ctrl.CurrentSnapshot()})

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
