package middleware

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/ui"
	"github.com/deemkeen/don/util"
	"github.com/muesli/termenv"
)

// MainTui runs one timeline viewer per ssh session. snapshots may be nil,
// then sessions start empty and nothing is persisted.
func MainTui(conf *util.AppConfig, snapshots store.SnapshotStore, logger *log.Logger) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {
		pty, _, active := s.Pty()
		if !active {
			wish.Println(s, "no active terminal, skipping")
			return nil
		}

		sessLogger := logger.With("session", SessionID(s.Context()))
		sess := ui.Connect(s.Context(), conf.Conf.ApiUrl, snapshots, domain.Filter{}, sessLogger)

		go func() {
			<-s.Context().Done()
			sess.Close()
			if snapshots == nil {
				return
			}
			if err := sess.Persist(snapshots); err != nil {
				sessLogger.Warn("Could not persist state", "err", err)
			}
		}()

		m := ui.NewModel(sess, pty.Window.Width, pty.Window.Height)
		return tea.NewProgram(m, tea.WithInput(s), tea.WithOutput(s), tea.WithAltScreen())
	}
	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.ANSI256)
}
