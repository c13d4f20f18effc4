package lexer

import "testing"

func TestScanTokensKeywordsAndSymbols(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []TokenType
	}{
		{
			name: "namespace and class",
			src:  "namespace Foo { class Bar { } }",
			want: []TokenType{TokenNamespace, TokenIdent, TokenLBrace, TokenClass, TokenIdent, TokenLBrace, TokenRBrace, TokenRBrace, TokenEOF},
		},
		{
			name: "scope operator vs colon",
			src:  "Foo::Bar x : y",
			want: []TokenType{TokenIdent, TokenDoubleColon, TokenIdent, TokenIdent, TokenColon, TokenIdent, TokenEOF},
		},
		{
			name: "pointer and reference sigils",
			src:  "u32 *p = &x;",
			want: []TokenType{TokenIdent, TokenStar, TokenIdent, TokenEqual, TokenAmp, TokenIdent, TokenSemicolon, TokenEOF},
		},
		{
			name: "arrow and compound assign",
			src:  "p->x += 1u32;",
			want: []TokenType{TokenIdent, TokenArrow, TokenIdent, TokenPlusEq, TokenInt, TokenSemicolon, TokenEOF},
		},
		{
			name: "shift compound",
			src:  "x <<= 2; y >>= 1;",
			want: []TokenType{TokenIdent, TokenShlEq, TokenInt, TokenSemicolon, TokenIdent, TokenShrEq, TokenInt, TokenSemicolon, TokenEOF},
		},
		{
			name: "control flow keywords",
			src:  "goto later; later: switch (x) { case 1: break; default: continue; }",
			want: []TokenType{
				TokenGoto, TokenIdent, TokenSemicolon, TokenIdent, TokenColon,
				TokenSwitch, TokenLParen, TokenIdent, TokenRParen, TokenLBrace,
				TokenCase, TokenInt, TokenColon, TokenBreak, TokenSemicolon,
				TokenDefault, TokenColon, TokenContinue, TokenSemicolon, TokenRBrace, TokenEOF,
			},
		},
		{
			name: "line comment skipped",
			src:  "u32 x; // trailing comment\nu32 y;",
			want: []TokenType{TokenIdent, TokenIdent, TokenSemicolon, TokenIdent, TokenIdent, TokenSemicolon, TokenEOF},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			toks := NewScanner(tc.src).ScanTokens()
			if len(toks) != len(tc.want) {
				t.Fatalf("token count = %d, want %d (%v)", len(toks), len(tc.want), toks)
			}
			for i, want := range tc.want {
				if toks[i].Type != want {
					t.Errorf("token[%d] = %s, want %s", i, toks[i].Type, want)
				}
			}
		})
	}
}

func TestScanNumberLiterals(t *testing.T) {
	tests := []struct {
		src        string
		wantLexeme string
		wantType   TokenType
	}{
		{"0x1A_2Bu32", "0x1A_2Bu32", TokenInt},
		{"0o17i8", "0o17i8", TokenInt},
		{"0b1010_1010", "0b1010_1010", TokenInt},
		{"42", "42", TokenInt},
		{"3.14f32", "3.14f32", TokenFloat},
		{"1_000_000u64", "1_000_000u64", TokenInt},
	}
	for _, tc := range tests {
		toks := NewScanner(tc.src).ScanTokens()
		if len(toks) != 2 {
			t.Fatalf("%q: token count = %d, want 2", tc.src, len(toks))
		}
		if toks[0].Type != tc.wantType || toks[0].Lexeme != tc.wantLexeme {
			t.Errorf("%q: got %v, want type %s lexeme %q", tc.src, toks[0], tc.wantType, tc.wantLexeme)
		}
	}
}

func TestScanStringAndCharEscapes(t *testing.T) {
	toks := NewScanner(`"hi\n" 'a' '\t'`).ScanTokens()
	if len(toks) != 4 {
		t.Fatalf("token count = %d, want 4", len(toks))
	}
	if toks[0].Type != TokenString || toks[0].Lexeme != "hi\n" {
		t.Errorf("string token = %v", toks[0])
	}
	if toks[1].Type != TokenChar || toks[1].Lexeme != "a" {
		t.Errorf("char token = %v", toks[1])
	}
	if toks[2].Type != TokenChar || toks[2].Lexeme != "\t" {
		t.Errorf("char token = %v", toks[2])
	}
}

func TestBlockCommentSkipped(t *testing.T) {
	toks := NewScanner("u32 /* skip\nthis */ x;").ScanTokens()
	want := []TokenType{TokenIdent, TokenIdent, TokenSemicolon, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("token count = %d, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Type != w {
			t.Errorf("token[%d] = %s, want %s", i, toks[i].Type, w)
		}
	}
}
