package email

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessagePlainHTML(t *testing.T) {
	msg := string(buildMessage("Me <me@example.com>", "you@example.com", "Hello", "<p>Hi</p>", nil))

	assert.True(t, strings.HasPrefix(msg, "From: Me <me@example.com>\r\n"))
	assert.Contains(t, msg, "To: you@example.com\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>Hi</p>")
	assert.NotContains(t, msg, "multipart")
}

func TestBuildMessageWithAttachment(t *testing.T) {
	content := []byte(strings.Repeat("resume bytes ", 20))
	msg := string(buildMessage("me@example.com", "you@example.com", "Resume", "<p>Attached</p>", []Attachment{
		{Filename: "resume.pdf", Content: content},
	}))

	assert.Contains(t, msg, `Content-Type: multipart/mixed; boundary="`+mimeBoundary+`"`)
	assert.Contains(t, msg, `Content-Disposition: attachment; filename="resume.pdf"`)
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
	assert.True(t, strings.HasSuffix(msg, "--"+mimeBoundary+"--\r\n"))

	// The base64 payload must decode back to the original bytes once the
	// 76-column wrapping is undone.
	start := strings.Index(msg, "base64\r\n")
	require.GreaterOrEqual(t, start, 0)
	payload := msg[start+len("base64\r\n"):]
	payload = payload[strings.Index(payload, "\r\n\r\n")+4:]
	payload = payload[:strings.Index(payload, "--"+mimeBoundary)]
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.TrimSpace(payload), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, content, decoded)

	for _, line := range strings.Split(payload, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestSendSkipsWhenDisabled(t *testing.T) {
	m := &Mailer{Enabled: false}
	assert.NoError(t, m.SendResumeConfirmation("you@example.com"))
}

func TestSendRequiresRecipient(t *testing.T) {
	m := &Mailer{Enabled: false}
	assert.Error(t, m.send("", "subject", "body", nil))
}

func TestSendResumeMissingFile(t *testing.T) {
	m := &Mailer{Enabled: false}
	err := m.SendResume("you@example.com", "/does/not/exist.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read resume file")
}
