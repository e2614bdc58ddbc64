package xmain

import "strings"

// wrap word-wraps s to width w for text starting at column i. Continuation
// lines are indented to column i and newlines in s are kept. Narrow columns
// are not wrapped at all.
func wrap(i, w int, s string) string {
	indent := strings.Repeat(" ", i)
	if w-i < 24 {
		return strings.ReplaceAll(s, "\n", "\n"+indent)
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapWords(para, w-i)...)
	}
	return strings.Join(lines, "\n"+indent)
}

// wrapWords splits s into lines of at most width bytes. A word longer than
// width gets a line of its own.
func wrapWords(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
