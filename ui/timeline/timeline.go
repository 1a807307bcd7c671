package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/ui/common"
	"github.com/deemkeen/don/util"
)

var (
	postStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedPostStyle = postStyle.
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE))

	authorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Faint(true)
)

// postHeight is the rendered height of one post including its border
const postHeight = 5

type Model struct {
	Activities []domain.Activity
	Loading    bool
	Err        error
	Selected   int
	Offset     int
	Width      int
	Height     int
	Query      textinput.Model
	spinner    spinner.Model
}

func InitialModel(q string, width, height int) Model {
	query := textinput.New()
	query.Placeholder = "filter the timeline"
	query.Prompt = "/ "
	query.CharLimit = 100
	query.Width = 40
	query.SetValue(q)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_MAGENTA))

	return Model{
		Activities: []domain.Activity{},
		Width:      width,
		Height:     height,
		Query:      query,
		spinner:    s,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Editing reports whether key input goes to the query box
func (m Model) Editing() bool {
	return m.Query.Focused()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.StateMsg:
		return m.applyState(msg), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Query.Focused() {
			switch msg.String() {
			case "enter":
				m.Query.Blur()
				q := strings.TrimSpace(m.Query.Value())
				return m, func() tea.Msg { return common.FilterMsg{Q: q} }
			case "esc":
				m.Query.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.Query, cmd = m.Query.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "/":
			return m, m.Query.Focus()
		case "r":
			return m, func() tea.Msg { return common.RefreshMsg{} }
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Activities)-1 {
				m.Selected++
			}
		case "home", "g":
			m.Selected = 0
		}
		m.scroll()
	}
	return m, nil
}

// applyState shows the timeline newest first and keeps the selected activity
// selected when new ones arrive above it
func (m Model) applyState(msg common.StateMsg) Model {
	tl := msg.State.PublicTimeline

	var selectedID string
	if m.Selected < len(m.Activities) {
		selectedID = m.Activities[m.Selected].ID
	}

	m.Activities = domain.NewestFirst(tl.Activities)
	m.Loading = tl.Loading
	m.Err = tl.Err

	m.Selected = 0
	for i, a := range m.Activities {
		if a.ID == selectedID {
			m.Selected = i
			break
		}
	}
	m.scroll()
	return m
}

func (m *Model) visible() int {
	n := (m.Height - 6) / postHeight
	if n < 1 {
		return 1
	}
	return n
}

func (m *Model) scroll() {
	if m.Selected < m.Offset {
		m.Offset = m.Selected
	}
	if m.Selected >= m.Offset+m.visible() {
		m.Offset = m.Selected - m.visible() + 1
	}
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("public timeline (%d activities)", len(m.Activities))))
	if m.Loading {
		s.WriteString(" " + m.spinner.View() + " loading")
	}
	s.WriteString("\n")
	s.WriteString(m.Query.View())
	s.WriteString("\n\n")

	if m.Err != nil {
		s.WriteString(common.ErrorStyle.Render("Could not load the timeline: " + m.Err.Error()))
		s.WriteString("\n\n")
	}

	if len(m.Activities) == 0 {
		if !m.Loading {
			s.WriteString(common.EmptyStyle.Render("Nothing here yet."))
		}
		return s.String()
	}

	width := m.Width - 4
	if width < 20 {
		width = 20
	}

	end := min(m.Offset+m.visible(), len(m.Activities))
	for i := m.Offset; i < end; i++ {
		a := m.Activities[i]

		postContent := fmt.Sprintf("%s %s\n%s\n%s",
			authorStyle.Render(a.ActorName()),
			timeStyle.Render(a.Verb),
			contentStyle.Render(util.Truncate(oneLine(util.StripHTML(a.Content())), width-4)),
			timeStyle.Render(formatTime(a.Time)),
		)

		style := postStyle
		if i == m.Selected {
			style = selectedPostStyle
		}
		s.WriteString(style.Width(width).Render(postContent))
		s.WriteString("\n")
	}

	if rest := len(m.Activities) - end; rest > 0 {
		s.WriteString(common.EmptyStyle.Render(fmt.Sprintf("... and %d more", rest)))
	}

	return s.String()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		mins := int(duration.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else {
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
}
