package compiler

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single line kept", "   span  ", "   span  "},
		{"inner blank lines dropped", "   s\n     \n  \n   xxx   ", "   s xxx   "},
		{"outer blank lines dropped", "   \n    \n   a   b  \n   ", "a   b"},
		{"all whitespace", "  \n \t \n   ", ""},
		{"empty", "", ""},
		{"tabs become spaces", "\ta\tb", " a b"},
		{"crlf", "a  \r\n  b", "a b"},
		{"trailing newline", "a\n", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.raw); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		"   span  ",
		"   s\n     \n  \n   xxx   ",
		"   \n    \n   a   b  \n   ",
		"\n\n",
		"hello\n\tworld\n",
		"x",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIndentLines(t *testing.T) {
	if got := IndentLines("a\nb\n"); got != "  a\n  b\n" {
		t.Errorf("IndentLines = %q", got)
	}
	if got := IndentLinesN("a", 4); got != "    a\n" {
		t.Errorf("IndentLinesN = %q", got)
	}
	if got := IndentLines(""); got != "" {
		t.Errorf("IndentLines(\"\") = %q", got)
	}
}
