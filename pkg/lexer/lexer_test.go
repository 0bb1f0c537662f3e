package lexer

import "testing"

type lexerCase struct {
	name      string
	input     string
	expected  []Token
	expectErr bool
}

func runLexerCases(t *testing.T, cases []lexerCase) {
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := New(tc.input)
			var got []Token
			for {
				tok := l.Next()
				if tok.Type == TokenEOF {
					break
				}
				if tok.Type == TokenError {
					if !tc.expectErr {
						t.Fatalf("unexpected lex error: %v", l.Err())
					}
					return
				}
				got = append(got, tok)
			}
			if tc.expectErr {
				t.Fatalf("expected a lex error, got none")
			}
			if len(got) != len(tc.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(got), len(tc.expected), got)
			}
			for i, tok := range got {
				if tok != tc.expected[i] {
					t.Errorf("token %d: got %+v, want %+v", i, tok, tc.expected[i])
				}
			}
		})
	}
}

func TestLexerWhitespace(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{
			name:     "no whitespace",
			input:    "abc",
			expected: []Token{{Type: TokenIdent, Value: "abc", Position: 0}},
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  abc  ",
			expected: []Token{{Type: TokenIdent, Value: "abc", Position: 2}},
		},
		{
			name:     "mixed whitespace between tokens",
			input:    "1 \t\n\r\v+ 2",
			expected: []Token{
				{Type: TokenNumber, Value: "1", Position: 0},
				{Type: TokenPlus, Value: "+", Position: 6},
				{Type: TokenNumber, Value: "2", Position: 8},
			},
		},
	})
}

func TestLexerNumbers(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{name: "integer", input: "123", expected: []Token{{Type: TokenNumber, Value: "123", Position: 0}}},
		{name: "leading zero", input: "007", expected: []Token{{Type: TokenNumber, Value: "007", Position: 0}}},
		{name: "decimal", input: "3.14", expected: []Token{{Type: TokenNumber, Value: "3.14", Position: 0}}},
		{
			name:  "trailing dot with no digits is not consumed",
			input: "1.",
			expected: []Token{
				{Type: TokenNumber, Value: "1", Position: 0},
				{Type: TokenDot, Value: ".", Position: 1},
			},
		},
	})
}

func TestLexerIdentifiers(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{name: "simple", input: "health", expected: []Token{{Type: TokenIdent, Value: "health", Position: 0}}},
		{name: "leading underscore", input: "_x", expected: []Token{{Type: TokenIdent, Value: "_x", Position: 0}}},
		{name: "digits and underscores", input: "q_1", expected: []Token{{Type: TokenIdent, Value: "q_1", Position: 0}}},
	})
}

func TestLexerSymbols(t *testing.T) {
	runLexerCases(t, []lexerCase{
		{
			name:  "maximal munch for two-character operators",
			input: "== != <= >= ??",
			expected: []Token{
				{Type: TokenEq, Value: "==", Position: 0},
				{Type: TokenNeq, Value: "!=", Position: 3},
				{Type: TokenLte, Value: "<=", Position: 6},
				{Type: TokenGte, Value: ">=", Position: 9},
				{Type: TokenQColon, Value: "??", Position: 12},
			},
		},
		{
			name:  "single-character operators not followed by a completion",
			input: "< > ? :",
			expected: []Token{
				{Type: TokenLt, Value: "<", Position: 0},
				{Type: TokenGt, Value: ">", Position: 2},
				{Type: TokenQuestion, Value: "?", Position: 4},
				{Type: TokenColon, Value: ":", Position: 6},
			},
		},
		{name: "lone bang is a lex error", input: "!", expectErr: true},
		{name: "unknown character is a lex error", input: "@", expectErr: true},
	})
}

func TestLexerPeekDoesNotAdvance(t *testing.T) {
	l := New("1 + 2")
	first := l.Peek()
	second := l.Peek()
	if first != second {
		t.Fatalf("Peek is not idempotent: %+v != %+v", first, second)
	}
	if got := l.Next(); got != first {
		t.Fatalf("Next after Peek returned %+v, want %+v", got, first)
	}
}

func BenchmarkLex(b *testing.B) {
	const source = `math.clamp(q.health, 0, 100) + math.lerp(0, q.max_health(), 0.5) > q.threshold() ?? 10`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l := New(source)
		for {
			tok := l.Next()
			if tok.Type == TokenEOF || tok.Type == TokenError {
				break
			}
		}
	}
}
