package utils

import "unicode/utf8"

// ----------------------------------------------------------------------------
// Rune Scanner

// A RuneScanner is a minimal one-rune-of-pushback cursor over a byte buffer.
//
// It plays the same role for the Jack Analyzer that 'goparsec's own pc.Scanner
// plays for the Asm and Vm parsers: a shared leaf-level reader that the rest
// of the pipeline (tokenizer, parser) is built on top of. It's kept separate
// (and hand-rolled) because the Jack tokenizer needs to recognize comments and
// string literals while scanning rune-by-rune, something goparsec's grammar
// combinators aren't a natural fit for.
type RuneScanner struct {
	src    []byte
	offset int
}

// Initializes and returns to the caller a brand new 'RuneScanner' over 'src'.
func NewRuneScanner(src []byte) *RuneScanner {
	return &RuneScanner{src: src}
}

// Returns the next rune in the stream and advances the cursor past it.
// The zero rune (and ok = false) is returned once the stream is exhausted.
func (s *RuneScanner) Next() (rune, bool) {
	if s.offset >= len(s.src) {
		return 0, false
	}

	r, size := utf8.DecodeRune(s.src[s.offset:])
	s.offset += size
	return r, true
}

// Returns the next rune without advancing the cursor.
func (s *RuneScanner) Peek() (rune, bool) {
	if s.offset >= len(s.src) {
		return 0, false
	}

	r, _ := utf8.DecodeRune(s.src[s.offset:])
	return r, true
}

// Moves the cursor back by the width of 'r', allowing it to be read again.
// Only a single level of pushback is required by the Jack tokenizer.
func (s *RuneScanner) Unread(r rune) {
	s.offset -= utf8.RuneLen(r)
}
