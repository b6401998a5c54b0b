// Package redact removes secrets and PII from text before it crosses a
// trust boundary, and neutralizes markup before untrusted text is folded
// into a model prompt.
//
// Scrub applies its patterns in a fixed order: email addresses first, then
// IPv4 addresses, then the secret pack. The email pattern runs first so an
// address is never partially consumed by a broader token pattern; the
// secret patterns are anchored on distinct prefixes and cannot overlap one
// another, so their relative order does not matter.
package redact

import (
	"regexp"
	"strings"
)

// Placeholder tokens, one per redaction class.
const (
	RedactedEmail  = "[REDACTED_EMAIL]"
	RedactedIP     = "[REDACTED_IP]"
	RedactedSecret = "[REDACTED_SECRET]"
)

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	ipv4Pattern  = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)

	// secretPatterns are prefix-anchored heuristics for credential-shaped
	// tokens: cloud access keys, platform PATs, secret-prefixed API keys,
	// and private key PEM headers.
	secretPatterns = []*regexp.Regexp{
		regexp.MustCompile(`AKIA[0-9A-Z]{16}`),                              // AWS access key ID
		regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),                         // Google API key
		regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),                   // GitHub tokens
		regexp.MustCompile(`sk-[A-Za-z0-9_-]{32,}`),                         // sk- prefixed API keys
		regexp.MustCompile(`xox[baprs]-[0-9A-Za-z-]{10,48}`),                // Slack tokens
		regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE\s+KEY-----`), // PEM header
	}
)

// Scrub replaces emails, IPv4 addresses, and credential-shaped tokens with
// fixed placeholders. It is total and idempotent: any input yields some
// output, and no pattern matches a placeholder.
func Scrub(text string) string {
	text = emailPattern.ReplaceAllString(text, RedactedEmail)
	text = ipv4Pattern.ReplaceAllString(text, RedactedIP)
	for _, pat := range secretPatterns {
		text = pat.ReplaceAllString(text, RedactedSecret)
	}
	return text
}

var promptEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// ForPrompt neutralizes angle-bracket markup so retrieved text cannot close
// or open a delimited prompt section. The output contains no angle brackets
// and the replacement entities contain none either, so applying ForPrompt
// to its own output returns it unchanged.
func ForPrompt(text string) string {
	return promptEscaper.Replace(text)
}
