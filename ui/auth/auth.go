package auth

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/don/ui/common"
	"github.com/deemkeen/don/util"
)

var (
	Style = lipgloss.NewStyle().
		Align(lipgloss.Left, lipgloss.Top).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1, 3)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_LIGHTBLUE))
)

type Mode int

const (
	Login Mode = iota
	Register
)

const (
	fieldEmail = iota
	fieldUsername
	fieldPassword
)

// Model is the login or register form. Submitting emits a LoginMsg or
// RegisterMsg, the outcome arrives through the store state.
type Model struct {
	Mode     Mode
	Email    textinput.Model
	Username textinput.Model
	Password textinput.Model
	Focus    int
	Loading  bool
	Err      string
}

func InitialModel(mode Mode) Model {
	email := textinput.New()
	email.Placeholder = "alice@example.com"
	email.CharLimit = 100
	email.Width = 40

	username := textinput.New()
	username.Placeholder = "alice"
	username.CharLimit = 30
	username.Width = 30

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 100
	password.Width = 30

	m := Model{
		Mode:     mode,
		Email:    email,
		Username: username,
		Password: password,
	}
	m.Focus = m.fields()[0]
	m.focusField()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) fields() []int {
	if m.Mode == Register {
		return []int{fieldEmail, fieldUsername, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m *Model) input(field int) *textinput.Model {
	switch field {
	case fieldEmail:
		return &m.Email
	case fieldUsername:
		return &m.Username
	default:
		return &m.Password
	}
}

func (m *Model) focusField() tea.Cmd {
	m.Email.Blur()
	m.Username.Blur()
	m.Password.Blur()
	return m.input(m.Focus).Focus()
}

func (m *Model) move(delta int) tea.Cmd {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.Focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.Focus = fields[pos]
	return m.focusField()
}

func (m Model) last() bool {
	fields := m.fields()
	return m.Focus == fields[len(fields)-1]
}

// Reset clears the inputs, e.g. after a successful login
func (m Model) Reset() Model {
	m.Email.Reset()
	m.Username.Reset()
	m.Password.Reset()
	m.Err = ""
	m.Focus = m.fields()[0]
	m.focusField()
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.StateMsg:
		m.Loading = msg.State.Authentication.Loading
		m.Err = msg.State.Authentication.Error
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "shift+up":
			return m, m.move(-1)
		case "down":
			return m, m.move(1)
		case "enter":
			if !m.last() {
				return m, m.move(1)
			}
			if m.Loading {
				return m, nil
			}
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	in := m.input(m.Focus)
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	username := strings.TrimSpace(m.Username.Value())
	password := m.Password.Value()

	if m.Mode == Register {
		email := strings.TrimSpace(m.Email.Value())
		return func() tea.Msg {
			return common.RegisterMsg{Email: email, Username: username, Password: password}
		}
	}
	return func() tea.Msg {
		return common.LoginMsg{Username: username, Password: password}
	}
}

func (m Model) View() string {
	var s strings.Builder

	title := "Log in"
	if m.Mode == Register {
		title = "Create an account"
	}
	s.WriteString(fmt.Sprintf("%s to %s\n\n", title, util.GetNameAndVersion()))

	for _, f := range m.fields() {
		var label string
		switch f {
		case fieldEmail:
			label = "email"
		case fieldUsername:
			label = "username"
		case fieldPassword:
			label = "password"
		}
		s.WriteString(labelStyle.Render(label))
		s.WriteString("\n")
		s.WriteString(m.input(f).View())
		s.WriteString("\n\n")
	}

	switch {
	case m.Loading:
		s.WriteString(common.EmptyStyle.Render("working..."))
	case m.Err != "":
		s.WriteString(common.ErrorStyle.Render(m.Err))
	}
	s.WriteString("\n\n")
	s.WriteString(common.HelpStyle.Render("(↑/↓ to move, enter to submit)"))

	return Style.Render(s.String())
}
