package compiler

import (
	"strings"
	"unicode"
)

// NormalizeText collapses raw JSX text the way JSX engines do: tabs become
// spaces, every line but the first loses its leading whitespace, every line
// but the last loses its trailing whitespace, and the non-empty lines are
// joined by single spaces. Applying it twice changes nothing.
func NormalizeText(raw string) string {
	content := strings.ReplaceAll(raw, "\t", " ")
	lines := splitLines(content)

	var b strings.Builder
	for i, line := range lines {
		if i != 0 {
			line = strings.TrimLeftFunc(line, unicode.IsSpace)
		}
		if i != len(lines)-1 {
			line = strings.TrimRightFunc(line, unicode.IsSpace)
		}
		if b.Len() > 0 && line != "" {
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return b.String()
}

// splitLines splits on \n and \r\n. A trailing line terminator does not
// start an extra empty line, and the empty string has no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
