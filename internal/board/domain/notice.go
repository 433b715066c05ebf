package domain

import "time"

// Notices carry everything a notifier needs to render and address a message.
// ToUserID is empty when the recipient has no account yet.

type InvitationNotice struct {
	ToEmail     string
	ToUserID    string
	InviterName string
	BoardName   string
	JoinCode    string
	AcceptURL   string
}

type AssignmentNotice struct {
	ToEmail      string
	ToUserID     string
	AssignerName string
	BoardName    string
	TaskTitle    string
	DueDate      *time.Time
	TaskURL      string
}

type MentionNotice struct {
	ToEmail       string
	ToUserID      string
	MentionerName string
	BoardName     string
	TaskTitle     string
	Comment       string
	TaskURL       string
}

type ReminderNotice struct {
	ToEmail   string
	ToUserID  string
	TaskID    string
	TaskTitle string
	DueDate   time.Time
	TaskURL   string
}
