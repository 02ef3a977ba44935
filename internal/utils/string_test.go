package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripWhitespace(t *testing.T) {
	assert.Equal(t, "abcdefghijklmnop", StripWhitespace("abcd efgh ijkl mnop"))
	assert.Equal(t, "secret", StripWhitespace("  secret\t\n"))
	assert.Equal(t, "", StripWhitespace("   "))
}

func TestCleanPreview(t *testing.T) {
	assert.Equal(t, "line one line two", CleanPreview("line one\r\nline two"))
	assert.Equal(t, "escaped newline", CleanPreview("escaped\\nnewline"))
	assert.Equal(t, "a b c", CleanPreview("  a   b \n c  "))
}

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "short", TruncatePreview("short", 10))
	assert.Equal(t, "abc...", TruncatePreview("abcdef", 3))
	// Truncation counts runes, not bytes
	assert.Equal(t, "héllo", TruncatePreview("héllo", 5))
}

func TestNormalizeMessageID(t *testing.T) {
	assert.Equal(t, "abc@example.com", NormalizeMessageID("<abc@example.com>"))
	assert.Equal(t, "abc@example.com", NormalizeMessageID(" abc@example.com "))
}

func TestEnsureAngleBrackets(t *testing.T) {
	assert.Equal(t, "<abc@example.com>", EnsureAngleBrackets("abc@example.com"))
	assert.Equal(t, "<abc@example.com>", EnsureAngleBrackets("<abc@example.com>"))
	assert.Equal(t, "", EnsureAngleBrackets(""))
}
