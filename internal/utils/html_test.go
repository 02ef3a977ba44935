package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	// Arrange
	source := `<html><head><style>body { color: red; }</style></head>
<body><h1>Hello</h1><p>First&nbsp;paragraph</p><p>Second paragraph</p>
<script>alert("nope")</script></body></html>`

	// Act
	text := HTMLToText(source)

	// Assert
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "First paragraph")
	assert.Contains(t, text, "Second paragraph")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "alert")
}

func TestHTMLToText_BlockTagsBecomeNewlines(t *testing.T) {
	// Act
	text := HTMLToText("<div>one</div><div>two</div>")

	// Assert
	assert.Equal(t, []string{"one", "two"}, strings.Split(text, "\n"))
}

func TestHTMLToText_DecodesEntities(t *testing.T) {
	// Act
	text := HTMLToText("<p>fish &amp; chips</p>")

	// Assert
	assert.Equal(t, "fish & chips", text)
}

func TestHTMLToText_CollapsesWhitespaceRuns(t *testing.T) {
	// Act
	text := HTMLToText("<p>a    lot\t\tof   space</p>")

	// Assert
	assert.Equal(t, "a lot of space", text)
}
