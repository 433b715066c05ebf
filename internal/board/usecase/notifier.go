package usecase

import (
	"context"

	"taskup-backend/internal/board/domain"
)

// Notifier delivers board events to people. Implementations must not block on
// delivery; callers only log the returned error.
type Notifier interface {
	InvitationSent(ctx context.Context, notice domain.InvitationNotice) error
	TaskAssigned(ctx context.Context, notice domain.AssignmentNotice) error
	UserMentioned(ctx context.Context, notice domain.MentionNotice) error
}

// NopNotifier drops every notice
type NopNotifier struct{}

func (NopNotifier) InvitationSent(context.Context, domain.InvitationNotice) error { return nil }
func (NopNotifier) TaskAssigned(context.Context, domain.AssignmentNotice) error   { return nil }
func (NopNotifier) UserMentioned(context.Context, domain.MentionNotice) error     { return nil }
