package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskhub-api/internal/constants"
)

func TestUsernameBase(t *testing.T) {
	assert.Equal(t, "jane.doe", UsernameBase("jane.doe@example.com"))
	assert.Equal(t, "odd@name", UsernameBase("odd@name@example.com"))
	assert.Equal(t, "noat", UsernameBase("noat"))

	long := strings.Repeat("a", constants.MaxUsernameBaseLength+20) + "@example.com"
	assert.Len(t, UsernameBase(long), constants.MaxUsernameBaseLength)
}

func TestUsernameCandidate(t *testing.T) {
	assert.Equal(t, "jane", UsernameCandidate("jane", 0))
	assert.Equal(t, "jane_1", UsernameCandidate("jane", 1))
	assert.Equal(t, "jane_12", UsernameCandidate("jane", 12))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Jane@example.com", NormalizeEmail("  Jane@EXAMPLE.com "))
	assert.Equal(t, "plain", NormalizeEmail("plain"))
}
