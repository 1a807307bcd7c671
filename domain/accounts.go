package domain

import "fmt"

// User is the authenticated account returned by login and register
type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"displayName"`
	Avatar      *string `json:"avatar"`
}

// Name prefers the display name over the username
func (u *User) Name() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Username
}

func (u *User) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUsername: %s \n\tName: %s)", u.ID, u.Username, u.Name())
}
