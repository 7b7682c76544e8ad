package discovery

import (
	"regexp"
	"strings"
)

// emailRe matches email-shaped substrings in arbitrary text.
var emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// blacklist holds substrings that disqualify an extracted email candidate:
// placeholder domains and role accounts that are never a person's address.
var blacklist = []string{
	"example.com",
	"noreply",
	"no-reply",
	"support@",
	"info@",
	"contact@",
}

// ExtractEmails returns all email-shaped substrings in text, in order.
func ExtractEmails(text string) []string {
	if text == "" {
		return nil
	}
	return emailRe.FindAllString(text, -1)
}

// Acceptable reports whether an extracted candidate passes the blacklist.
func Acceptable(email string) bool {
	lower := strings.ToLower(email)
	for _, bad := range blacklist {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

// FirstAcceptable returns the first candidate in text that passes the
// blacklist, or "" when none does.
func FirstAcceptable(text string) string {
	for _, email := range ExtractEmails(text) {
		if Acceptable(email) {
			return email
		}
	}
	return ""
}
