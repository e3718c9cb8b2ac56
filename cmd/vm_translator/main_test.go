package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func compile(t *testing.T, inputs map[string]string, options map[string]string) []string {
	t.Helper()

	dir := t.TempDir()
	var args []string
	for name, source := range inputs {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(source), 0644); err != nil {
			t.Fatalf("unable to write fixture %s: %s", name, err)
		}
		args = append(args, path)
	}

	output := filepath.Join(dir, "out.asm")
	if options == nil {
		options = map[string]string{}
	}
	options["output"] = output

	if status := Handler(args, options); status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got %d", status)
	}

	compiled, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("error reading output file %s: %s", output, err)
	}

	return strings.Split(strings.TrimRight(string(compiled), "\n"), "\n")
}

// compileDir writes 'inputs' into a fresh subdirectory and invokes the Handler with
// that directory itself as the sole input, exercising the directory-walk path.
func compileDir(t *testing.T, inputs map[string]string, options map[string]string) []string {
	t.Helper()

	parent := t.TempDir()
	src := filepath.Join(parent, "src")
	if err := os.Mkdir(src, 0755); err != nil {
		t.Fatalf("unable to create source directory: %s", err)
	}
	for name, source := range inputs {
		if err := os.WriteFile(filepath.Join(src, name), []byte(source), 0644); err != nil {
			t.Fatalf("unable to write fixture %s: %s", name, err)
		}
	}

	output := filepath.Join(parent, "out.asm")
	if options == nil {
		options = map[string]string{}
	}
	options["output"] = output

	if status := Handler([]string{src}, options); status != 0 {
		t.Fatalf("unexpected exit status code: expected 0 got %d", status)
	}

	compiled, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("error reading output file %s: %s", output, err)
	}

	return strings.Split(strings.TrimRight(string(compiled), "\n"), "\n")
}

func TestVMTranslatorPushConstantAdd(t *testing.T) {
	lines := compile(t, map[string]string{
		"SimpleAdd.vm": "push constant 7\npush constant 8\nadd\n",
	}, nil)

	if len(lines) == 0 {
		t.Fatalf("expected a non-empty .asm output")
	}
	if lines[0] != "@7" {
		t.Fatalf("expected the first line to be '@7', got %q", lines[0])
	}

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "@8") {
		t.Fatalf("expected the compiled output to reference '@8'")
	}
	if !strings.Contains(joined, "M=D+M") {
		t.Fatalf("expected the compiled output to contain the 'add' stack operation")
	}
}

func TestVMTranslatorComparison(t *testing.T) {
	lines := compile(t, map[string]string{
		"EqTest.vm": "push constant 5\npush constant 5\neq\n",
	}, nil)

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "D;JEQ") {
		t.Fatalf("expected the compiled 'eq' op to branch on D;JEQ, got:\n%s", joined)
	}
}

func TestVMTranslatorCallAndReturn(t *testing.T) {
	lines := compile(t, map[string]string{
		"Main.vm": "function Main.main 0\n" +
			"push constant 2\n" +
			"call Main.double 1\n" +
			"return\n" +
			"function Main.double 0\n" +
			"push argument 0\n" +
			"push argument 0\n" +
			"add\n" +
			"return\n",
	}, nil)

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "(Main.main)") {
		t.Fatalf("expected a 'Main.main' function label, got:\n%s", joined)
	}
	if !strings.Contains(joined, "(Main.double)") {
		t.Fatalf("expected a 'Main.double' function label, got:\n%s", joined)
	}
	if !strings.Contains(joined, "@Main.double") {
		t.Fatalf("expected a jump target for the 'Main.double' call, got:\n%s", joined)
	}
}

func TestVMTranslatorBootstrap(t *testing.T) {
	lines := compile(t, map[string]string{
		"Sys.vm": "function Sys.init 0\npush constant 0\nreturn\n",
	}, map[string]string{"bootstrap": "true"})

	if len(lines) < 6 {
		t.Fatalf("expected at least 6 bootstrap instructions, got %d", len(lines))
	}
	if lines[0] != "@256" {
		t.Fatalf("expected the bootstrap to set the Stack Pointer to '@256', got %q", lines[0])
	}
	if lines[1] != "D=A" {
		t.Fatalf("expected the second bootstrap instruction to be 'D=A', got %q", lines[1])
	}

	joined := strings.Join(lines, "\n")

	// The Stack Pointer must be set to 256 before anything else.
	if !strings.Contains(joined, "@256\nD=A\n@SP\nM=D") {
		t.Fatalf("expected the bootstrap to set SP to 256 ahead of the call, got:\n%s", joined)
	}

	// Bootstrap must lower a real 'call Sys.init 0', not a bare jump: the caller's frame
	// (LCL/ARG/THIS/THAT) is saved before ARG/LCL are repositioned for the callee.
	for _, saved := range []string{"LCL", "ARG", "THIS", "THAT"} {
		needle := fmt.Sprintf("@%s\nD=M", saved)
		if !strings.Contains(joined, needle) {
			t.Fatalf("expected the call sequence to save %s (D=M), got:\n%s", saved, joined)
		}
	}
	if !strings.Contains(joined, "@5\nD=D-A\n@ARG\nM=D") {
		t.Fatalf("expected ARG to be repositioned to SP-5-nArgs, got:\n%s", joined)
	}
	if !strings.Contains(joined, "@SP\nD=M\n@LCL\nM=D") {
		t.Fatalf("expected LCL to be repositioned to SP, got:\n%s", joined)
	}
	if !strings.Contains(joined, "@Sys.init\n0;JMP") {
		t.Fatalf("expected the bootstrap to jump to 'Sys.init', got:\n%s", joined)
	}
	if !strings.Contains(joined, "(Bootstrap$ret.0)") {
		t.Fatalf("expected a declared return label for the bootstrap call, got:\n%s", joined)
	}
}

func TestVMTranslatorDirectoryDefaultsBootstrapOn(t *testing.T) {
	lines := compileDir(t, map[string]string{
		"Sys.vm": "function Sys.init 0\npush constant 0\nreturn\n",
	}, nil)

	if lines[0] != "@256" {
		t.Fatalf("expected bootstrap to default on for a directory input, got %q as the first line", lines[0])
	}
}

func TestVMTranslatorSingleFileDefaultsBootstrapOff(t *testing.T) {
	lines := compile(t, map[string]string{
		"Sys.vm": "function Sys.init 0\npush constant 0\nreturn\n",
	}, nil)

	if lines[0] == "@256" {
		t.Fatalf("expected bootstrap to default off for a single-file input, got bootstrap code")
	}
}

func TestVMTranslatorBootstrapFalseSuppressesForDirectory(t *testing.T) {
	lines := compileDir(t, map[string]string{
		"Sys.vm": "function Sys.init 0\npush constant 0\nreturn\n",
	}, map[string]string{"bootstrap": "false"})

	if lines[0] == "@256" {
		t.Fatalf("expected '--bootstrap=false' to suppress bootstrap even for a directory input")
	}
}

func TestVMTranslatorMultiModuleStaticIsolation(t *testing.T) {
	lines := compile(t, map[string]string{
		"Foo.vm": "push constant 1\npop static 0\n",
		"Bar.vm": "push constant 2\npop static 0\n",
	}, nil)

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "@Foo.0") {
		t.Fatalf("expected 'Foo.vm' static 0 to lower to '@Foo.0', got:\n%s", joined)
	}
	if !strings.Contains(joined, "@Bar.0") {
		t.Fatalf("expected 'Bar.vm' static 0 to lower to '@Bar.0', got:\n%s", joined)
	}
}

func TestVMTranslatorMissingArguments(t *testing.T) {
	if status := Handler(nil, map[string]string{}); status == 0 {
		t.Fatalf("expected a non-zero exit status code for missing arguments")
	}
}
