package emailtmpl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PasswordReset(t *testing.T) {
	subject, text, html, err := Render(PasswordReset, Data{
		AppName:   "inkpress",
		Name:      "Ada",
		ActionURL: "https://example.com/reset-password?token=abc&x=<y>",
		ExpiresIn: "15 minutes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reset your inkpress password", subject)
	assert.Contains(t, text, "Hi Ada,")
	assert.Contains(t, text, "https://example.com/reset-password?token=abc&x=<y>")
	assert.Contains(t, html, "15 minutes")
	assert.NotContains(t, html, "<y>")
}

func TestRender_DefaultName(t *testing.T) {
	_, text, _, err := Render(Welcome, Data{AppName: "inkpress", ActionURL: "http://localhost/dashboard"})
	require.NoError(t, err)
	assert.Contains(t, text, "Hi there,")
}

func TestRender_Unknown(t *testing.T) {
	_, _, _, err := Render("nope", Data{})
	assert.Error(t, err)
}

func TestMessage(t *testing.T) {
	msg, err := Message(PasswordChanged, Data{AppName: "inkpress", Email: "a@example.com", Time: "now"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.To)
	assert.Equal(t, PasswordChanged, msg.Tags["template"])
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "15 minutes", HumanDuration(15*time.Minute))
	assert.Equal(t, "1 hour", HumanDuration(time.Hour))
	assert.Equal(t, "2 hours", HumanDuration(2*time.Hour))
	assert.Equal(t, "1 minute", HumanDuration(time.Minute))
}
