package header

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/ui/common"
	"github.com/deemkeen/don/util"
)

type Model struct {
	Width int
	User  *domain.User
	Feed  feed.State
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.StateMsg:
		m.User = msg.State.Authentication.User
	case common.FeedStatusMsg:
		m.Feed = msg.State
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	}
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.User, m.Feed, m.Width)
}

func GetHeaderStyle(user *domain.User, fs feed.State, width int) string {
	// three boxes with padding(1) on each side
	overhead := 6
	availableWidth := width - overhead

	if availableWidth < 40 {
		availableWidth = 40
	}

	userWidth := availableWidth / 4
	versionWidth := availableWidth / 2
	feedWidth := availableWidth - userWidth - versionWidth

	name := "anonymous"
	if user != nil {
		name = user.Name()
	}

	live := "offline"
	liveColor := common.COLOR_GREY
	if fs.Connected {
		live = "live"
		if fs.Filter.Q != "" {
			live = "live: " + fs.Filter.Q
		}
		liveColor = common.COLOR_GREEN
	}

	userBox := lipgloss.
		NewStyle().
		SetString(util.Truncate(name, userWidth)).
		Align(lipgloss.Left).
		Background(lipgloss.Color(common.COLOR_PURPLE)).
		Padding(0, 1).
		Width(userWidth).
		String()

	version := lipgloss.
		NewStyle().
		SetString(util.GetNameAndVersion()).
		Width(versionWidth).
		Background(lipgloss.Color(common.COLOR_GREY)).
		Padding(0, 1).
		String()

	feedBox := lipgloss.
		NewStyle().
		SetString(util.Truncate(live, feedWidth)).
		Background(lipgloss.Color(liveColor)).
		Padding(0, 1).
		Align(lipgloss.Left).
		Width(feedWidth).
		String()

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		userBox,
		version,
		feedBox,
	)
}
