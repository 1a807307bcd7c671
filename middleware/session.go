package middleware

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/deemkeen/don/util"
	"github.com/google/uuid"
)

type contextKey struct{ name string }

var sessionIDKey = &contextKey{"session-id"}

// SessionMiddleware gives every ssh session an id and logs who connected.
// Viewing is anonymous, keys are only logged.
func SessionMiddleware(logger *log.Logger) wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			id := uuid.New().String()
			s.Context().SetValue(sessionIDKey, id)

			fields := []any{"session", id, "user", s.User(), "remote", s.RemoteAddr().String()}
			if pk := s.PublicKey(); pk != nil {
				fields = append(fields, "key", util.PkToHash(util.PublicKeyToString(pk)))
			}
			logger.Info("Session started", fields...)

			start := time.Now()
			h(s)
			logger.Info("Session ended", "session", id, "duration", time.Since(start))
		}
	}
}

// SessionID returns the id assigned by SessionMiddleware or "" outside of it
func SessionID(ctx ssh.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
