package dto

import "github.com/fekuna/superfume-sync/internal/model"

// Session is the outcome of a successful sign in. Offline sessions carry no
// token.
type Session struct {
	ID      string
	User    *model.User
	Token   string
	Offline bool
	Message string
}
