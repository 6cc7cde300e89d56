package domain

import (
	"net/url"
	"strings"
)

type User struct {
	ID        string `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	Phone     string `db:"phone" json:"phone"`
	Hash      string `db:"password_hash" json:"-"`
	CreatedAt string `db:"created_at" json:"createdAt"`

	PostsCount int `db:"-" json:"postsCount"`
}

// AvatarURL is derived from the username so it stays stable across sessions.
func (u User) AvatarURL() string {
	return "https://api.dicebear.com/7.x/micah/svg?seed=" + url.QueryEscape(u.Username)
}

// Initial is the avatar fallback letter.
func (u User) Initial() string {
	for _, r := range u.Username {
		return strings.ToUpper(string(r))
	}
	return "?"
}
