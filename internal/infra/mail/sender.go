package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"gopkg.in/gomail.v2"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	// TemplateDir holds one HTML file per message template id.
	TemplateDir string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		From:        from,
		TemplateDir: "templates",
	}
}

type stepEmailData struct {
	Name      string
	MessageID string
}

// SendStep renders the template for one sequence step and delivers it over
// SMTP. messageID ends up in tracking links so opens and clicks can be tied
// back to the send.
func (s *EmailSender) SendStep(to, name, subject, templateID, messageID string) error {
	tmplPath := filepath.Join(s.TemplateDir, templateID+".html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("parse step template %s: %w", templateID, err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, stepEmailData{Name: name, MessageID: messageID}); err != nil {
		return fmt.Errorf("render step template %s: %w", templateID, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
