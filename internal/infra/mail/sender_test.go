package mail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendStep_MissingTemplateFails(t *testing.T) {
	s := NewEmailSender("smtp.example.com", 587, "", "", "no-reply@leadforge.dev")
	s.TemplateDir = t.TempDir()

	err := s.SendStep("a@b.c", "Ana", "Hi", "does-not-exist", "msg-1")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parse step template")
}

func TestSendStep_BadTemplateSyntaxFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.html")
	assert.NoError(t, os.WriteFile(path, []byte("{{.Name"), 0o644))

	s := NewEmailSender("smtp.example.com", 587, "", "", "no-reply@leadforge.dev")
	s.TemplateDir = dir

	err := s.SendStep("a@b.c", "Ana", "Hi", "broken", "msg-1")

	assert.Error(t, err)
}
