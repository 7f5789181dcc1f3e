package controller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type confirmKeyMap struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}

var confirmKeys = confirmKeyMap{
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab"), key.WithHelp("←/→", "toggle")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort")),
}

// confirmModel is a yes/no prompt that defaults to no.
type confirmModel struct {
	question  string
	selection bool
	done      bool
	cancelled bool
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question}
}

func (c confirmModel) Init() tea.Cmd {
	return nil
}

func (c confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Quit):
		c.done, c.cancelled, c.selection = true, true, false

		return c, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Yes):
		c.done, c.selection = true, true

		return c, tea.Quit
	case key.Matches(keyMsg, confirmKeys.No):
		c.done, c.selection = true, false

		return c, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Toggle):
		c.selection = !c.selection
	case key.Matches(keyMsg, confirmKeys.Submit):
		c.done = true

		return c, tea.Quit
	}

	return c, nil
}

func (c confirmModel) View() string {
	if c.done {
		return ""
	}

	active := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Bold(true).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)

	yes, no := inactive.Render("Yes"), active.Render("No")
	if c.selection {
		yes, no = active.Render("Yes"), inactive.Render("No")
	}

	help := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		fmt.Sprintf("%s • %s • %s • %s",
			confirmKeys.Yes.Help().Key+" "+confirmKeys.Yes.Help().Desc,
			confirmKeys.No.Help().Key+" "+confirmKeys.No.Help().Desc,
			confirmKeys.Toggle.Help().Key+" "+confirmKeys.Toggle.Help().Desc,
			confirmKeys.Submit.Help().Key+" "+confirmKeys.Submit.Help().Desc,
		))

	return fmt.Sprintf("%s\n\n  %s %s\n\n%s\n", warnStyle.Render(c.question), yes, no, help)
}
