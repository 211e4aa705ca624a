// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	textTemplate "text/template"
)

const confirmationSubject = "Confirm your email"

var confirmationHTML = template.Must(template.New("confirm_html").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hello {{.Username}},</p>
<p>Thank you for registering with Contactbook. Please confirm your email address:</p>
<p><a href="{{.Link}}">Confirm email</a></p>
<p>If you did not create an account, ignore this message.</p>
</body>
</html>
`))

var confirmationText = textTemplate.Must(textTemplate.New("confirm_text").Parse(`Hello {{.Username}},

Thank you for registering with Contactbook. Please confirm your email address:
{{.Link}}

If you did not create an account, ignore this message.
`))

type confirmationData struct {
	Username string
	Link     string
}

// ConfirmationEmail renders the email-verification message.
func ConfirmationEmail(to, username, link string) (Message, error) {
	data := confirmationData{Username: username, Link: link}

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("mailer: render confirmation html: %w", err)
	}
	if err := confirmationText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("mailer: render confirmation text: %w", err)
	}

	return Message{
		To:      to,
		ToName:  username,
		Subject: confirmationSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
