package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/ui/auth"
	"github.com/deemkeen/don/ui/common"
	"github.com/deemkeen/don/ui/header"
	"github.com/deemkeen/don/ui/timeline"
)

var (
	focusedModelStyle = lipgloss.NewStyle().
		Align(lipgloss.Left, lipgloss.Top).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).
		MarginLeft(1)
)

type MainModel struct {
	width         int
	height        int
	session       *Session
	filter        domain.Filter
	state         common.SessionState
	user          *domain.User
	status        string
	headerModel   header.Model
	timelineModel timeline.Model
	loginModel    auth.Model
	registerModel auth.Model
}

func NewModel(sess *Session, width int, height int) MainModel {
	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)

	initial := sess.Store.State()
	filter := sess.Filter()

	m := MainModel{
		width:         width,
		height:        height,
		session:       sess,
		filter:        filter,
		state:         common.TimelineView,
		user:          initial.Authentication.User,
		headerModel:   header.Model{Width: width, User: initial.Authentication.User},
		timelineModel: timeline.InitialModel(filter.Q, width, height-4),
		loginModel:    auth.InitialModel(auth.Login),
		registerModel: auth.InitialModel(auth.Register),
	}
	return m
}

func (m MainModel) Init() tea.Cmd {
	current := m.session.Store.State()
	return tea.Batch(
		func() tea.Msg { return common.StateMsg{State: current} },
		m.session.waitForState(),
		m.timelineModel.Init(),
		m.loginModel.Init(),
		m.session.ensureCmd(m.filter),
		m.session.connectCmd(m.filter),
	)
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		m.timelineModel.Width = msg.Width - 2
		m.timelineModel.Height = msg.Height - 4
		return m, nil

	case common.StateMsg:
		m.user = msg.State.Authentication.User
		cmds = append(cmds, m.session.waitForState())

	case common.FeedStatusMsg:
		if msg.Err != nil {
			m.status = "live feed unavailable: " + msg.Err.Error()
		} else {
			m.status = ""
		}

	case common.FilterMsg:
		next := m.filter
		next.Q = msg.Q
		reconnect := !next.SameStream(m.filter) || !m.session.feedConnected()
		m.filter = next
		m.session.SetFilter(next)

		cmds = append(cmds, m.session.fetchCmd(next))
		if reconnect {
			cmds = append(cmds, m.session.connectCmd(next))
		}
		return m, tea.Batch(cmds...)

	case common.RefreshMsg:
		return m, m.session.fetchCmd(m.filter)

	case common.LoginMsg:
		return m, m.session.loginCmd(msg)

	case common.RegisterMsg:
		return m, m.session.registerCmd(msg)

	case common.LogoutMsg:
		return m, m.session.logoutCmd()

	case common.AuthDoneMsg:
		if msg.Err != nil {
			return m, nil
		}
		switch m.state {
		case common.LoginView, common.RegisterView:
			m.loginModel = m.loginModel.Reset()
			m.registerModel = m.registerModel.Reset()
			m.state = common.TimelineView
			m.status = ""
			return m, m.session.ensureCmd(m.filter)
		default:
			if m.user == nil {
				m.status = "logged out"
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.state == common.TimelineView && !m.timelineModel.Editing() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "x":
				if m.user != nil {
					return m, func() tea.Msg { return common.LogoutMsg{} }
				}
			}
		}

		if !m.timelineModel.Editing() {
			switch msg.String() {
			case "tab":
				return m.switchTo(m.next(1))
			case "shift+tab":
				return m.switchTo(m.next(-1))
			case "esc":
				if m.state != common.TimelineView {
					return m.switchTo(common.TimelineView)
				}
			}
		}

		// keyboard input goes to the active view only
		switch m.state {
		case common.TimelineView:
			m.timelineModel, cmd = m.timelineModel.Update(msg)
		case common.LoginView:
			m.loginModel, cmd = m.loginModel.Update(msg)
		case common.RegisterView:
			m.registerModel, cmd = m.registerModel.Update(msg)
		}
		return m, cmd
	}

	m.headerModel, _ = m.headerModel.Update(msg)
	m.timelineModel, cmd = m.timelineModel.Update(msg)
	cmds = append(cmds, cmd)
	m.loginModel, cmd = m.loginModel.Update(msg)
	cmds = append(cmds, cmd)
	m.registerModel, cmd = m.registerModel.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// next cycles the views. Logged in users only have the timeline.
func (m MainModel) next(delta int) common.SessionState {
	if m.user != nil {
		return common.TimelineView
	}
	views := []common.SessionState{common.TimelineView, common.LoginView, common.RegisterView}
	pos := 0
	for i, v := range views {
		if v == m.state {
			pos = i
		}
	}
	return views[(pos+delta+len(views))%len(views)]
}

func (m MainModel) switchTo(state common.SessionState) (tea.Model, tea.Cmd) {
	if state == m.state {
		return m, nil
	}
	m.state = state
	if state == common.TimelineView {
		return m, m.session.ensureCmd(m.filter)
	}
	return m, nil
}

func (m MainModel) View() string {
	var s string

	s += m.headerModel.View() + "\n"

	var body string
	switch m.state {
	case common.TimelineView:
		body = m.timelineModel.View()
	case common.LoginView:
		body = m.loginModel.View()
	case common.RegisterView:
		body = m.registerModel.View()
	}

	availableHeight := m.height - 4
	if availableHeight < 1 {
		availableHeight = 1
	}
	s += focusedModelStyle.Render(lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Width(m.width - 4).
		Render(body))
	s += "\n"

	if m.status != "" {
		s += common.ErrorStyle.Render(m.status) + "\n"
	}

	s += common.HelpStyle.Render(fmt.Sprintf("focused > %s\t\tkeys > %s • ctrl-c: exit", m.currentFocusedModel(), m.viewCommands()))
	return s
}

func (m MainModel) viewCommands() string {
	switch m.state {
	case common.TimelineView:
		keys := "↑/↓: select • /: filter • r: refresh"
		if m.user != nil {
			return keys + " • x: logout"
		}
		return keys + " • tab: login/register"
	default:
		return "tab: next view • esc: timeline"
	}
}

func (m MainModel) currentFocusedModel() string {
	switch m.state {
	case common.LoginView:
		return "login"
	case common.RegisterView:
		return "register"
	default:
		return "timeline"
	}
}
