package jack

import (
	"fmt"
	"strconv"

	"go.n2tcore.dev/toolchain/pkg/utils"
)

// ----------------------------------------------------------------------------
// Tokenizer

// The Tokenizer turns raw Jack source bytes into a flat slice of Token, stripping
// comments and whitespace as it goes. Unlike the Asm/Vm tokenizers (built on goparsec,
// see pkg/asm and pkg/vm), this one is hand-written: comments in Jack can span multiple
// lines and must be recognized mid-token-stream rather than stripped line-by-line, which
// doesn't fit goparsec's line-oriented grammar combinators. It's built directly on top of
// 'utils.RuneScanner', a minimal one-rune-of-pushback cursor.
type Tokenizer struct {
	scanner *utils.RuneScanner
}

// Initializes and returns to the caller a brand new 'Tokenizer' over 'src'.
func NewTokenizer(src []byte) *Tokenizer {
	return &Tokenizer{scanner: utils.NewRuneScanner(src)}
}

// Tokenize consumes the entire source and returns its token sequence.
// Mirrors the reference tokenizer's one-token-at-a-time 'advance' loop, just collected
// eagerly here since the Parser wants random-access lookahead (current AND next token).
func (t *Tokenizer) Tokenize() ([]Token, error) {
	tokens := []Token{}
	for {
		tok, ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

// next reads runes from the scanner, accumulating a token, stripping any comment or
// whitespace run encountered along the way, and returns the next recognized Token (ok =
// false once the stream is exhausted with nothing left to accumulate).
//
// Keywords are recognized the instant the accumulator matches one of 'Keywords', without
// checking whether the next character would extend it further (e.g. "classifier" tokenizes
// as keyword "class", keyword "if" and identifier "ier"). This is a known, preserved quirk of
// this toolchain's lexical rules — a maximal-munch reimplementation would need to buffer
// one more character of lookahead before committing to a keyword, which this Tokenizer
// deliberately does not do.
func (t *Tokenizer) next() (Token, bool, error) {
	acc := []rune{}

	for {
		r, ok := t.scanner.Next()
		if !ok {
			if len(acc) != 0 {
				tok, err := finalizeAccumulator(acc)
				return tok, true, err
			}
			return Token{}, false, nil
		}

		if isWhitespace(r) {
			if len(acc) != 0 {
				tok, err := finalizeAccumulator(acc)
				return tok, true, err
			}
			continue
		}

		if r == '"' {
			if len(acc) != 0 {
				return Token{}, false, fmt.Errorf("unexpected '\"' while accumulating a token")
			}
			tok, err := t.readStringConst()
			return tok, err == nil, err
		}

		// Comments only ever begin on an empty accumulator: '/' is itself a Jack symbol,
		// so if we're mid-token we flush first (below) and re-examine '/' on the next call.
		if r == '/' && len(acc) == 0 {
			if next, ok := t.scanner.Peek(); ok && next == '/' {
				t.scanner.Next()
				t.skipLineComment()
				continue
			}
			if next, ok := t.scanner.Peek(); ok && next == '*' {
				t.scanner.Next()
				if err := t.skipBlockComment(); err != nil {
					return Token{}, false, err
				}
				continue
			}
		}

		if Symbols[r] {
			if len(acc) != 0 {
				t.scanner.Unread(r)
				tok, err := finalizeAccumulator(acc)
				return tok, true, err
			}
			return Token{Type: Symbol, Value: string(r)}, true, nil
		}

		acc = append(acc, r)
		if Keywords[string(acc)] {
			return Token{Type: Keyword, Value: string(acc)}, true, nil
		}
	}
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// skipLineComment consumes up to (and including) the next newline, or EOF.
func (t *Tokenizer) skipLineComment() {
	for {
		r, ok := t.scanner.Next()
		if !ok || r == '\n' {
			return
		}
	}
}

// skipBlockComment consumes up to (and including) the matching "*/", which may span an
// arbitrary number of lines. Unlike the original reimplementation this toolchain is
// grounded on, opening and closing markers are handled symmetrically regardless of
// whether they share a line with real tokens — no trailing token on a comment's line is
// ever silently dropped.
func (t *Tokenizer) skipBlockComment() error {
	for {
		r, ok := t.scanner.Next()
		if !ok {
			return fmt.Errorf("unterminated block comment")
		}
		if r == '*' {
			if next, ok := t.scanner.Peek(); ok && next == '/' {
				t.scanner.Next()
				return nil
			}
		}
	}
}

// readStringConst reads the verbatim run of characters up to the closing quote. Per the
// Jack lexical rules there are no escape sequences: a '\' is just an ordinary character.
func (t *Tokenizer) readStringConst() (Token, error) {
	acc := []rune{}
	for {
		r, ok := t.scanner.Next()
		if !ok {
			return Token{}, fmt.Errorf("unterminated string constant")
		}
		if r == '"' {
			return Token{Type: StringConst, Value: string(acc)}, nil
		}
		acc = append(acc, r)
	}
}

// finalizeAccumulator classifies a flushed, non-keyword accumulator as either an
// integerConstant (maximal run of decimal digits, range-checked) or an identifier.
func finalizeAccumulator(acc []rune) (Token, error) {
	s := string(acc)
	if isAllDigits(s) {
		val, err := strconv.Atoi(s)
		if err != nil || val > MaxIntConst {
			return Token{}, fmt.Errorf("integer constant %q out of range (0..%d)", s, MaxIntConst)
		}
		return Token{Type: IntConst, Value: s}, nil
	}
	return Token{Type: Identifier, Value: s}, nil
}

func isAllDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
