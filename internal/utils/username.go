package utils

import (
	"strconv"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/constants"
)

// UsernameBase returns the local part of email, trimmed so that suffixed
// candidates still fit the username column.
func UsernameBase(email string) string {
	local := email
	if at := strings.LastIndex(email, "@"); at >= 0 {
		local = email[:at]
	}
	if len(local) > constants.MaxUsernameBaseLength {
		local = local[:constants.MaxUsernameBaseLength]
	}
	return local
}

// UsernameCandidate returns base for n == 0 and base_n otherwise.
func UsernameCandidate(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "_" + strconv.Itoa(n)
}

// NormalizeEmail trims whitespace and lower-cases the domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
