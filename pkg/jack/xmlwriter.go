package jack

import (
	"fmt"
	"io"
	"strings"

	"go.n2tcore.dev/toolchain/pkg/utils"
)

// ----------------------------------------------------------------------------
// Xml Writer

// The xmlWriter streams a Jack parse-tree (or token dump) directly to an io.Writer as the
// Parser walks the grammar, rather than materializing an in-memory tree first (see
// parser.go). It tracks the currently open elements on 'utils.Stack[string]', making
// invariant (3), "every opening element closed in LIFO order", a property of the Close
// method itself rather than something the caller has to get right by hand.
type xmlWriter struct {
	out   io.Writer
	open  utils.Stack[string]
	depth int
}

func newXMLWriter(out io.Writer) *xmlWriter {
	return &xmlWriter{out: out}
}

// Open writes a non-terminal's opening element and pushes its name onto the LIFO stack.
func (w *xmlWriter) Open(name string) {
	w.writeLine(fmt.Sprintf("<%s>", name))
	w.open.Push(name)
	w.depth++
}

// Close pops the LIFO stack and writes the closing element. An error here means the
// Parser's grammar productions are mismatched (Open/Close calls out of order), not a
// malformed input — a defect in this package, not in the source being analyzed.
func (w *xmlWriter) Close(name string) error {
	top, err := w.open.Pop()
	if err != nil {
		return fmt.Errorf("cannot close element %q: nothing is open", name)
	}
	if top != name {
		return fmt.Errorf("mismatched closing element: expected %q, got %q", top, name)
	}
	w.depth--
	w.writeLine(fmt.Sprintf("</%s>", name))
	return nil
}

// Leaf writes a terminal token as a single self-contained element, e.g. "<keyword> let </keyword>".
func (w *xmlWriter) Leaf(tok Token) {
	w.writeLine(fmt.Sprintf("<%s> %s </%s>", tok.Type, escape(tok), tok.Type))
}

func (w *xmlWriter) writeLine(s string) {
	fmt.Fprintf(w.out, "%s%s\n", strings.Repeat("  ", w.depth), s)
}

// escape applies the XML escaping spec.md §4.3 requires: '<', '>' and '&' are escaped in
// every token's value, and '"' is escaped in string constants. The Tokenizer ends a string
// constant at its first '"', so the quote case only arises for tokens built elsewhere.
func escape(tok Token) string {
	v := tok.Value
	v = strings.ReplaceAll(v, "&", "&amp;")
	v = strings.ReplaceAll(v, "<", "&lt;")
	v = strings.ReplaceAll(v, ">", "&gt;")
	if tok.Type == StringConst {
		v = strings.ReplaceAll(v, "\"", "&quot;")
	}
	return v
}

// WriteTokenXML emits the token-dump XML (the "T.xml" output) for a full token sequence.
func WriteTokenXML(out io.Writer, tokens []Token) error {
	w := newXMLWriter(out)
	w.Open("tokens")
	for _, tok := range tokens {
		w.Leaf(tok)
	}
	return w.Close("tokens")
}
