package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var loginTmpl = template.Must(template.New("login").Parse(`
<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
	<h2 style="color: #333;">Sign in to PrepFlow</h2>
	<p>Click the button below to log in to your account:</p>
	<a href="{{.Link}}" style="display: inline-block; background: #cac5fe; color: #020408; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">Log in</a>
	<p style="color: #888; font-size: 14px; margin-top: 16px;">This link expires in 15 minutes and can only be used once.</p>
	<p style="color: #aaa; font-size: 12px;">If you didn't request this, you can safely ignore this email.</p>
</div>`))

var feedbackTmpl = template.Must(template.New("feedback").Parse(`
<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
	<h2 style="color: #333;">Your interview feedback is ready</h2>
	<p>Your {{.Role}} interview scored <strong>{{.Score}}/100</strong>.</p>
	<a href="{{.Link}}" style="display: inline-block; background: #cac5fe; color: #020408; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">View feedback</a>
</div>`))

func LoginLink(to, link string) (Message, error) {
	var buf bytes.Buffer
	if err := loginTmpl.Execute(&buf, struct{ Link string }{link}); err != nil {
		return Message{}, fmt.Errorf("render login email: %w", err)
	}
	return Message{To: to, Subject: "Your PrepFlow login link", HTML: buf.String()}, nil
}

func FeedbackReady(to, role string, score int, link string) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Role  string
		Score int
		Link  string
	}{role, score, link}
	if err := feedbackTmpl.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render feedback email: %w", err)
	}
	return Message{To: to, Subject: "Your interview feedback is ready", HTML: buf.String()}, nil
}
