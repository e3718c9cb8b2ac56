package jack_test

import (
	"bytes"
	"strings"
	"testing"

	"go.n2tcore.dev/toolchain/pkg/jack"
)

func TestWriteTokenXML(t *testing.T) {
	var buf bytes.Buffer
	tokens := []jack.Token{
		{Type: jack.Keyword, Value: "let"},
		{Type: jack.Identifier, Value: "x"},
		{Type: jack.Symbol, Value: "="},
		{Type: jack.IntConst, Value: "5"},
		{Type: jack.Symbol, Value: ";"},
	}

	if err := jack.WriteTokenXML(&buf, tokens); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	out := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "<tokens>") {
		t.Fatalf("expected output to start with '<tokens>', got:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "</tokens>") {
		t.Fatalf("expected output to end with '</tokens>', got:\n%s", out)
	}
	if !strings.Contains(out, "<keyword> let </keyword>") {
		t.Fatalf("expected a 'let' keyword element, got:\n%s", out)
	}
	if !strings.Contains(out, "<symbol> = </symbol>") {
		t.Fatalf("expected a '=' symbol element, got:\n%s", out)
	}
}

func TestEscapeReservedSymbols(t *testing.T) {
	var buf bytes.Buffer
	tokens := []jack.Token{{Type: jack.Symbol, Value: "<"}}
	jack.WriteTokenXML(&buf, tokens)
	if !strings.Contains(buf.String(), "&lt;") {
		t.Fatalf("expected '<' to be escaped as '&lt;', got:\n%s", buf.String())
	}

	buf.Reset()
	tokens = []jack.Token{{Type: jack.Symbol, Value: ">"}}
	jack.WriteTokenXML(&buf, tokens)
	if !strings.Contains(buf.String(), "&gt;") {
		t.Fatalf("expected '>' to be escaped as '&gt;', got:\n%s", buf.String())
	}

	buf.Reset()
	tokens = []jack.Token{{Type: jack.Symbol, Value: "&"}}
	jack.WriteTokenXML(&buf, tokens)
	if !strings.Contains(buf.String(), "&amp;") {
		t.Fatalf("expected '&' to be escaped as '&amp;', got:\n%s", buf.String())
	}
}
