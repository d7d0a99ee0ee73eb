package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/constants"
)

// PasswordAttributes are the user values a password must not resemble.
type PasswordAttributes struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
}

var attributeSplit = regexp.MustCompile(`\W+`)

// maxSimilarity is the share of matching characters at which a password is
// considered too close to a user attribute.
const maxSimilarity = 0.7

// commonPasswords is a short list of the most frequently leaked passwords.
var commonPasswords = map[string]struct{}{}

func init() {
	for _, p := range strings.Fields(`
		password password1 password12 password123 passw0rd p@ssw0rd 12345678 123456789
		1234567890 87654321 11111111 00000000 12121212 qwertyui qwerty123 qwertyuiop
		1q2w3e4r 1qaz2wsx zaq12wsx asdfghjk asdfasdf abcd1234 abcdefgh iloveyou
		sunshine princess football baseball welcome1 welcome123 letmein1 trustno1
		superman batman123 starwars whatever michael1 jennifer charlie1 computer
		internet admin123 administrator changeme changeme1 monkey123 dragon123
		master123 shadow123 freedom1 1password secret123 qazwsxedc mustang1
		liverpool chelsea1 arsenal1 jordan23 harley12 ranger12 buster12 hunter12
		soccer12 hockey12 killer12 summer12 winter12 spring12 autumn12 samsung1
		google123 facebook1 linkedin1 pokemon1 minecraft loveyou1 flower12
		cookie12 banana12 chocolate butterfly purple12 orange12 yellow12 matrix12
	`) {
		commonPasswords[p] = struct{}{}
	}
}

// ValidatePassword returns every policy violation for password. An empty
// result means the password is acceptable.
func ValidatePassword(password string, attrs PasswordAttributes) []string {
	var problems []string

	if len([]rune(password)) < constants.MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", constants.MinPasswordLength))
	}

	if _, common := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; common {
		problems = append(problems, "This password is too common.")
	}

	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	if label := similarAttribute(password, attrs); label != "" {
		problems = append(problems, "The password is too similar to the "+label+".")
	}

	return problems
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func similarAttribute(password string, attrs PasswordAttributes) string {
	lower := strings.ToLower(password)
	checks := []struct {
		label string
		value string
	}{
		{"username", attrs.Username},
		{"first name", attrs.FirstName},
		{"last name", attrs.LastName},
		{"email address", attrs.Email},
	}

	for _, c := range checks {
		value := strings.ToLower(strings.TrimSpace(c.value))
		if value == "" {
			continue
		}
		candidates := append([]string{value}, attributeSplit.Split(value, -1)...)
		for _, part := range candidates {
			if len(part) < 3 {
				continue
			}
			if similarity(lower, part) >= maxSimilarity {
				return c.label
			}
		}
	}
	return ""
}

// similarity is 2*L/(len(a)+len(b)) where L is the longest common substring.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	longest := 0
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		curr := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > longest {
					longest = curr[j]
				}
			}
		}
		prev = curr
	}
	return 2 * float64(longest) / float64(len(a)+len(b))
}
