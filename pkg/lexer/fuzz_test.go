package lexer

import "testing"

func FuzzLexer(f *testing.F) {
	seeds := []string{
		"",
		"1",
		"1.5",
		"q.health",
		"math.sqrt(16)",
		"a == b",
		"!",
		"!=",
		"??",
		"@#$",
		"1.",
		"007",
		"_ident_1",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		l := New(input)
		for {
			tok := l.Next()
			if tok.Type == TokenEOF || tok.Type == TokenError {
				return
			}
		}
	})
}
