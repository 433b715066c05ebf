package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"taskup-backend/internal/board/domain"
	"taskup-backend/pkg/mailer"
)

const dueDateLayout = "Mon, 02 Jan 2006 15:04 MST"

var emailTemplates = template.Must(template.New("email").Funcs(template.FuncMap{
	"due": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(dueDateLayout)
	},
}).Parse(`
{{define "layout_start"}}<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#1f2937">{{end}}
{{define "layout_end"}}<p style="color:#6b7280;font-size:12px">You received this email because of activity on TaskUp.</p></body></html>{{end}}

{{define "invitation"}}{{template "layout_start"}}
<h2>{{.InviterName}} invited you to join {{.BoardName}}</h2>
<p>Join code: <strong style="font-family:monospace;font-size:18px">{{.JoinCode}}</strong></p>
<p><a href="{{.AcceptURL}}">Accept the invitation</a></p>
{{template "layout_end"}}{{end}}

{{define "assignment"}}{{template "layout_start"}}
<h2>{{.AssignerName}} assigned you a task</h2>
<p><strong>{{.TaskTitle}}</strong> on {{.BoardName}}</p>
{{with due .DueDate}}<p>Due {{.}}</p>{{end}}
<p><a href="{{.TaskURL}}">Open the task</a></p>
{{template "layout_end"}}{{end}}

{{define "mention"}}{{template "layout_start"}}
<h2>{{.MentionerName}} mentioned you in a comment</h2>
<p>On <strong>{{.TaskTitle}}</strong> in {{.BoardName}}:</p>
<blockquote style="border-left:3px solid #d1d5db;padding-left:12px">{{.Comment}}</blockquote>
<p><a href="{{.TaskURL}}">Reply on TaskUp</a></p>
{{template "layout_end"}}{{end}}

{{define "reminder"}}{{template "layout_start"}}
<h2>{{.TaskTitle}} is due soon</h2>
<p>Due {{.DueDate.Format "Mon, 02 Jan 2006 15:04 MST"}}</p>
<p><a href="{{.TaskURL}}">Open the task</a></p>
{{template "layout_end"}}{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func invitationEmail(n domain.InvitationNotice) (mailer.Message, error) {
	html, err := render("invitation", n)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:      n.ToEmail,
		Subject: fmt.Sprintf("%s invited you to join %s on TaskUp", n.InviterName, n.BoardName),
		HTML:    html,
		Text: fmt.Sprintf("%s invited you to join %s on TaskUp.\nJoin code: %s\nAccept: %s\n",
			n.InviterName, n.BoardName, n.JoinCode, n.AcceptURL),
	}, nil
}

func assignmentEmail(n domain.AssignmentNotice) (mailer.Message, error) {
	html, err := render("assignment", n)
	if err != nil {
		return mailer.Message{}, err
	}
	text := fmt.Sprintf("%s assigned you \"%s\" on %s.\n", n.AssignerName, n.TaskTitle, n.BoardName)
	if n.DueDate != nil {
		text += "Due " + n.DueDate.Format(dueDateLayout) + "\n"
	}
	return mailer.Message{
		To:      n.ToEmail,
		Subject: fmt.Sprintf("%s assigned you a task on TaskUp", n.AssignerName),
		HTML:    html,
		Text:    text + n.TaskURL + "\n",
	}, nil
}

func mentionEmail(n domain.MentionNotice) (mailer.Message, error) {
	html, err := render("mention", n)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:      n.ToEmail,
		Subject: fmt.Sprintf("%s mentioned you in a comment", n.MentionerName),
		HTML:    html,
		Text: fmt.Sprintf("%s mentioned you on \"%s\" in %s:\n\n%s\n\n%s\n",
			n.MentionerName, n.TaskTitle, n.BoardName, n.Comment, n.TaskURL),
	}, nil
}

func reminderEmail(n domain.ReminderNotice) (mailer.Message, error) {
	html, err := render("reminder", n)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		To:      n.ToEmail,
		Subject: fmt.Sprintf("Reminder: %s is due soon", n.TaskTitle),
		HTML:    html,
		Text:    fmt.Sprintf("\"%s\" is due %s.\n%s\n", n.TaskTitle, n.DueDate.Format(dueDateLayout), n.TaskURL),
	}, nil
}
