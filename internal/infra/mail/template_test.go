package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderWelcomeContainsCredentials(t *testing.T) {
	html, text, err := RenderWelcome(WelcomeEmailData{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "a1b2c3d4e5f60718",
		LoginURL: "https://app.example.com/login",
	})

	assert.NoError(t, err)
	assert.Contains(t, html, "Welcome, Alice!")
	assert.Contains(t, html, "alice@example.com")
	assert.Contains(t, html, "a1b2c3d4e5f60718")
	assert.Contains(t, html, "https://app.example.com/login")

	assert.Contains(t, text, "alice@example.com")
	assert.Contains(t, text, "a1b2c3d4e5f60718")
	assert.Contains(t, text, "https://app.example.com/login")
}

func TestRenderWelcomeEscapesHTML(t *testing.T) {
	html, _, err := RenderWelcome(WelcomeEmailData{
		Name:     "<script>alert(1)</script>",
		Email:    "a@b.com",
		Password: "pw",
		LoginURL: "https://x.com",
	})

	assert.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestWelcomeSubject(t *testing.T) {
	assert.Equal(t, "Welcome, Alice! Your account is ready", WelcomeSubject("Alice"))
}
