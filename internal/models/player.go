package models

import "fmt"

// DefaultAvatar is used when a client does not send one.
const DefaultAvatar = "default.png"

// Profile is the lobby-visible identity of a connected player.
// The player ID is the connection's client id.
type Profile struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// NewProfile fills in the default username and avatar for blank fields.
func NewProfile(id int64, username, avatar string) Profile {
	if username == "" {
		username = fmt.Sprintf("User%d", id)
	}
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return Profile{ID: id, Username: username, Avatar: avatar}
}
