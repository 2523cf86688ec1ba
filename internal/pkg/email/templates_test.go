package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildVerifyAccountBody(t *testing.T) {
	link := "http://localhost:3000/verify?token=abc123"
	body := BuildVerifyAccountBody(link)

	assert.Contains(t, body, link)
	assert.Contains(t, body, "<html>")
}

func TestBuildResetPasswordBody(t *testing.T) {
	link := "http://localhost:3000/reset?token=xyz789"
	body := BuildResetPasswordBody(link)

	assert.Contains(t, body, link)
	assert.Contains(t, body, "<html>")
}

func TestBuildPasswordChangedBody(t *testing.T) {
	body := BuildPasswordChangedBody()

	assert.NotEmpty(t, body)
	assert.Contains(t, body, "<html>")
}
