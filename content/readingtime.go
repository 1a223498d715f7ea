package content

import (
	"fmt"
	"strings"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// ReadingTime returns a label such as "3 min read" for body.
// Words are whitespace separated; the estimate rounds up and is at least one minute.
func ReadingTime(body string) string {
	words := len(strings.Fields(body))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
