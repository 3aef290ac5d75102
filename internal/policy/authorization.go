package policy

import (
	"fmt"

	"blogicum/internal/models"
)

// Action is a mutation an actor attempts on a post or comment.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actor is the current requester. The zero value is anonymous.
type Actor struct {
	ID       uint
	Username string
	IsStaff  bool
}

// Anonymous reports whether no user is signed in.
func (a Actor) Anonymous() bool {
	return a.ID == 0
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *models.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{ID: u.ID, Username: u.Username, IsStaff: u.IsStaff}
}

// CanModifyPost allows the author any action; staff may additionally delete.
func CanModifyPost(actor Actor, post *models.Post, action Action) bool {
	if actor.Anonymous() || post == nil {
		return false
	}
	if post.AuthorID == actor.ID {
		return true
	}
	return action == ActionDelete && actor.IsStaff
}

// CanModifyComment allows only the comment's author. Staff get no override.
func CanModifyComment(actor Actor, comment *models.Comment, action Action) bool {
	if actor.Anonymous() || comment == nil {
		return false
	}
	return comment.AuthorID == actor.ID
}

// AuthorizePost returns a FORBIDDEN error when actor may not perform action on post.
func AuthorizePost(actor Actor, post *models.Post, action Action) error {
	if post == nil {
		return models.NewNotFoundError("Post", nil)
	}
	if CanModifyPost(actor, post, action) {
		return nil
	}
	return models.NewForbiddenError(fmt.Sprintf("not allowed to %s post %d", action, post.ID))
}

// AuthorizeComment returns a FORBIDDEN error when actor may not perform action on comment.
func AuthorizeComment(actor Actor, comment *models.Comment, action Action) error {
	if comment == nil {
		return models.NewNotFoundError("Comment", nil)
	}
	if CanModifyComment(actor, comment, action) {
		return nil
	}
	return models.NewForbiddenError(fmt.Sprintf("not allowed to %s comment %d", action, comment.ID))
}
