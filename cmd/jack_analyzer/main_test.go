package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const mainJack = `
class Main {
	function void main() {
		var int x;
		let x = 1;
		do Output.printInt(x);
		return;
	}
}
`

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("unable to write fixture %s: %s", path, err)
	}
	return path
}

func TestJackAnalyzerSingleFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Main.jack", mainJack)

	if status := Handler([]string{input}, map[string]string{}); status != 0 {
		t.Fatalf("expected a zero exit status, got %d", status)
	}

	tokens, err := os.ReadFile(filepath.Join(dir, "MainT.xml"))
	if err != nil {
		t.Fatalf("expected a 'MainT.xml' token dump to be written: %s", err)
	}
	if !strings.Contains(string(tokens), "<tokens>") {
		t.Fatalf("expected the token dump to contain a <tokens> element, got:\n%s", tokens)
	}

	tree, err := os.ReadFile(filepath.Join(dir, "Main.xml"))
	if err != nil {
		t.Fatalf("expected a 'Main.xml' parse tree to be written: %s", err)
	}
	if !strings.Contains(string(tree), "<class>") {
		t.Fatalf("expected the parse tree to contain a <class> element, got:\n%s", tree)
	}
}

func TestJackAnalyzerTokensOnly(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Main.jack", mainJack)

	status := Handler([]string{input}, map[string]string{"tokens-only": "true"})
	if status != 0 {
		t.Fatalf("expected a zero exit status, got %d", status)
	}

	if _, err := os.Stat(filepath.Join(dir, "MainT.xml")); err != nil {
		t.Fatalf("expected a 'MainT.xml' token dump to be written: %s", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Main.xml")); !os.IsNotExist(err) {
		t.Fatalf("expected no 'Main.xml' parse tree to be written with --tokens-only set")
	}
}

func TestJackAnalyzerDirectoryWalk(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "Main.jack", mainJack)
	writeInput(t, dir, "Helper.jack", `
class Helper {
	function void noop() {
		return;
	}
}
`)
	writeInput(t, dir, "notes.txt", "not a jack file")

	if status := Handler([]string{dir}, map[string]string{}); status != 0 {
		t.Fatalf("expected a zero exit status, got %d", status)
	}

	for _, stem := range []string{"Main", "Helper"} {
		if _, err := os.Stat(filepath.Join(dir, stem+".xml")); err != nil {
			t.Fatalf("expected '%s.xml' to be written: %s", stem, err)
		}
		if _, err := os.Stat(filepath.Join(dir, stem+"T.xml")); err != nil {
			t.Fatalf("expected '%sT.xml' to be written: %s", stem, err)
		}
	}
}

func TestJackAnalyzerMissingArguments(t *testing.T) {
	if status := Handler(nil, map[string]string{}); status == 0 {
		t.Fatalf("expected a non-zero exit status code for missing arguments")
	}
}

func TestJackAnalyzerMalformedSource(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "Broken.jack", "class Broken { let x }")

	if status := Handler([]string{input}, map[string]string{}); status == 0 {
		t.Fatalf("expected a non-zero exit status code for a malformed source file")
	}
}
