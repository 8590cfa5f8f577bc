package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-lore"
	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/internal/suggestion"
)

func newSuggestCommand(a *app) *cobra.Command {
	var cards string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Interactively search cards and print the chosen mention token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := a.module()
			if err != nil {
				return err
			}
			defer module.Close()

			scope := a.scope("")
			count, err := loadCards(cmd.Context(), module, cards, scope)
			if err != nil {
				return err
			}
			logging.WithFields(module.Logger, map[string]any{
				"scope": scope,
				"cards": count,
			}).Debug("cli.suggest.indexed")

			model := newSuggestModel(module.Module, scope)
			defer model.session.Close()

			final, err := tea.NewProgram(model, tea.WithInput(a.in), tea.WithOutput(a.errOut)).Run()
			if err != nil {
				return err
			}
			result := final.(*suggestModel)
			if result.err != nil {
				return result.err
			}
			if result.chosen != "" {
				_, err = fmt.Fprintln(a.out, result.chosen)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&cards, "cards", "", "YAML card manifest or directory of card files")
	return cmd
}

// snapshotMsg carries the latest session state into the program loop.
type snapshotMsg suggestion.Snapshot

var (
	promptStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4D96FF"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD93D"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type suggestModel struct {
	input    textinput.Model
	session  *lore.Session
	notify   chan struct{}
	snapshot suggestion.Snapshot
	chosen   string
	err      error
}

func newSuggestModel(module *lore.Module, scope string) *suggestModel {
	input := textinput.New()
	input.Placeholder = "type to search cards"
	input.Prompt = "@ "
	input.Focus()

	m := &suggestModel{
		input:  input,
		notify: make(chan struct{}, 1),
	}
	m.session = module.NewSession(scope, suggestion.WithListener(func(suggestion.Snapshot) {
		select {
		case m.notify <- struct{}{}:
		default:
		}
	}))
	return m
}

// waitForSnapshot blocks until the session reports a transition and then
// reads its current state.
func (m *suggestModel) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		<-m.notify
		return snapshotMsg(m.session.Snapshot())
	}
}

func (m *suggestModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSnapshot())
}

func (m *suggestModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = suggestion.Snapshot(msg)
		return m, m.waitForSnapshot()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.session.Close()
			return m, tea.Quit
		case "up":
			m.session.MovePrevious()
			m.snapshot = m.session.Snapshot()
			return m, nil
		case "down", "tab":
			m.session.MoveNext()
			m.snapshot = m.session.Snapshot()
			return m, nil
		case "enter":
			candidate, ok := m.session.ChooseSelected()
			if !ok {
				return m, nil
			}
			m.chosen, m.err = suggestion.Token(candidate)
			m.session.Close()
			return m, tea.Quit
		}
	}

	previous := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != previous {
		m.session.Search(value)
	}
	return m, cmd
}

func (m *suggestModel) View() string {
	var b strings.Builder
	b.WriteString(promptStyle.Render("Mention a card"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch m.snapshot.State {
	case suggestion.StateSearching:
		b.WriteString(mutedStyle.Render("searching..."))
	case suggestion.StateFailed:
		b.WriteString(errorStyle.Render(m.snapshot.Err))
	case suggestion.StateResolved:
		if len(m.snapshot.Candidates) == 0 {
			b.WriteString(mutedStyle.Render("no matching cards"))
			break
		}
		for i, candidate := range m.snapshot.Candidates {
			line := fmt.Sprintf("%s  %s", candidate.Title, mutedStyle.Render(candidate.ID))
			if i == m.snapshot.Selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("up/down select  enter insert  esc cancel"))
	b.WriteString("\n")
	return b.String()
}
