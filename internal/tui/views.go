package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/sessionkit/pkg/session"
)

// RenderSnapshot renders snap as a labelled block for `auth status`.
func RenderSnapshot(snap session.Snapshot, styles Styles) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(styles.Label.Render(label))
		b.WriteString(styles.Value.Render(value))
		b.WriteString("\n")
	}

	if id, ok := snap.Session.Identity(); ok {
		row("Session", styles.Success.Render("authenticated"))
		row("User", userLine(id))
		row("ID", id.ID)
		row("Onboarding", snap.Session.Onboarding().String())
		for _, k := range sortedKeys(id.Attributes) {
			row("", styles.Muted.Render(k+"="+id.Attributes[k]))
		}
	} else {
		row("Session", styles.Warning.Render("not signed in"))
	}

	if at := snap.Session.IssuedAt(); !at.IsZero() {
		row("Updated", at.Local().Format(time.RFC1123))
	}
	row("Status", statusText(snap.Status, styles))
	if snap.LastError != nil {
		row("Last error", styles.Error.Render(snap.LastError.Error()))
	}
	row("Version", fmt.Sprintf("%d", snap.Version))

	return strings.TrimRight(b.String(), "\n")
}

func userLine(id session.Identity) string {
	switch {
	case id.DisplayName != "" && id.Email != "":
		return fmt.Sprintf("%s <%s>", id.DisplayName, id.Email)
	case id.Email != "":
		return id.Email
	default:
		return id.DisplayName
	}
}

func statusText(status session.Status, styles Styles) string {
	if status.IsIdle() {
		return styles.Muted.Render("idle")
	}
	return styles.Status.Render(status.Operation().String() + " in progress")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderMain renders the watch view
func (m WatchModel) renderMain() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("sessionkit"))
	b.WriteString("\n")

	body := RenderSnapshot(m.snapshot, m.styles)
	if m.snapshot.Busy() {
		body = m.spinner.View() + " " + statusText(m.snapshot.Status, m.styles) + "\n\n" + body
	}
	b.WriteString(m.styles.Border.Render(body))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	if len(m.transitions) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("Recent transitions"))
		b.WriteString("\n")
		for _, t := range m.transitions {
			b.WriteString(m.renderTransition(t))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderHelpLine())
	return b.String()
}

func (m WatchModel) renderTransition(s session.Snapshot) string {
	marker := m.styles.Success.Render("●")
	if s.LastError != nil {
		marker = m.styles.Error.Render("●")
	} else if !s.Authenticated() {
		marker = m.styles.Muted.Render("○")
	}
	return fmt.Sprintf("  %s v%-4d %s", marker, s.Version, s.Session.String())
}

func (m WatchModel) renderHelpLine() string {
	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		if !kb.Enabled() {
			continue
		}
		h := kb.Help()
		parts = append(parts, m.styles.Key.Render(h.Key)+" "+m.styles.KeyDesc.Render(h.Desc))
	}
	return m.styles.Help.Render(strings.Join(parts, lipgloss.NewStyle().Faint(true).Render(" • ")))
}
