package stringutils

import "strings"

// DefaultTitleLength is the number of leading characters of the first user
// message used as an auto-derived conversation title.
const DefaultTitleLength = 50

// DeriveTitle builds a conversation title from message content: the first
// maxLen characters, with an ellipsis appended when the content was longer.
func DeriveTitle(content string, maxLen int) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
