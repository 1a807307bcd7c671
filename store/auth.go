package store

import (
	"encoding/json"
	"errors"

	"github.com/deemkeen/don/domain"
)

const UnknownError = "Unknown error"

// AuthState is the authentication state. Error is empty when there is none.
type AuthState struct {
	Loading bool
	Error   string
	User    *domain.User
}

func DefaultAuthState() AuthState {
	return AuthState{}
}

func authLoading(s AuthState) AuthState {
	s.Loading = true
	s.Error = ""
	return s
}

func authSucceeded(s AuthState, user *domain.User) AuthState {
	s.Loading = false
	s.User = user
	s.Error = ""
	return s
}

func authFailed(s AuthState, message string) AuthState {
	s.Loading = false
	s.Error = message
	return s
}

// responseBodyError is implemented by errors that carry a decoded HTTP response body
type responseBodyError interface {
	error
	ResponseBody() any
}

// NormalizeError turns an authentication failure into a displayable message.
// A response body that is a string wins, then the error text, then UnknownError.
func NormalizeError(err error) string {
	if err == nil {
		return UnknownError
	}

	var bodyErr responseBodyError
	if errors.As(err, &bodyErr) {
		if body, ok := bodyErr.ResponseBody().(string); ok {
			return body
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownError
}

type authJSON struct {
	Loading bool         `json:"loading"`
	Error   *string      `json:"error"`
	User    *domain.User `json:"user"`
}

func (s AuthState) MarshalJSON() ([]byte, error) {
	v := authJSON{Loading: s.Loading, User: s.User}
	if s.Error != "" {
		v.Error = &s.Error
	}
	return json.Marshal(v)
}

func (s *AuthState) UnmarshalJSON(b []byte) error {
	var v authJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	s.Loading = v.Loading
	s.User = v.User
	s.Error = ""
	if v.Error != nil {
		s.Error = *v.Error
	}
	return nil
}
