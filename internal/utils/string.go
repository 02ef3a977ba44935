package utils

import (
	"strings"
	"unicode"
)

// StripWhitespace removes every whitespace rune from a secret. Some
// providers render app passwords with grouping spaces for readability;
// servers expect the compact form.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CleanPreview flattens a message body into a single display line.
func CleanPreview(text string) string {
	text = strings.ReplaceAll(text, "\\n", " ")
	text = strings.ReplaceAll(text, "\\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.Join(strings.Fields(text), " ")
}

// TruncatePreview shortens a preview line to max runes with an ellipsis.
func TruncatePreview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}

// EnsureAngleBrackets formats a message ID for use in threading headers.
func EnsureAngleBrackets(messageID string) string {
	id := NormalizeMessageID(messageID)
	if id == "" {
		return ""
	}
	return "<" + id + ">"
}
