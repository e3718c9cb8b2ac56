package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHackAssembler(t *testing.T) {
	test := func(t *testing.T, source, expected string) {
		t.Helper()

		dir := t.TempDir()
		input := filepath.Join(dir, "program.asm")
		output := filepath.Join(dir, "program.hack")

		if err := os.WriteFile(input, []byte(source), 0644); err != nil {
			t.Fatalf("unable to write fixture input: %s", err)
		}

		if status := Handler([]string{input, output}, nil); status != 0 {
			t.Fatalf("unexpected exit status code: expected 0 got %d", status)
		}

		compiled, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("error reading output file %s: %s", output, err)
		}

		if string(compiled) != expected {
			t.Fatalf("expected:\n%s\ngot:\n%s", expected, compiled)
		}
	}

	t.Run("Add.asm", func(t *testing.T) {
		source := `
// Computes R0 = 2 + 3
@2
D=A
@3
D=D+A
@0
M=D
`
		expected := "0000000000000010\n" +
			"1110110000010000\n" +
			"0000000000000011\n" +
			"1110000010010000\n" +
			"0000000000000000\n" +
			"1110001100001000\n"
		test(t, source, expected)
	})

	t.Run("Max.asm", func(t *testing.T) {
		source := `
// Computes R2 = max(R0, R1)
	@R0
	D=M
	@R1
	D=D-M
	@OUTPUT_FIRST
	D;JGT
	@R1
	D=M
	@OUTPUT_D
	0;JMP
(OUTPUT_FIRST)
	@R0
	D=M
(OUTPUT_D)
	@R2
	M=D
(END)
	@END
	0;JMP
`
		expected := "0000000000000000\n" +
			"1111110000010000\n" +
			"0000000000000001\n" +
			"1111010011010000\n" +
			"0000000000001010\n" +
			"1110001100000001\n" +
			"0000000000000001\n" +
			"1111110000010000\n" +
			"0000000000001100\n" +
			"1110101010000111\n" +
			"0000000000000000\n" +
			"1111110000010000\n" +
			"0000000000000010\n" +
			"1110001100001000\n" +
			"0000000000001110\n" +
			"1110101010000111\n"
		test(t, source, expected)
	})

	t.Run("missing arguments", func(t *testing.T) {
		if status := Handler(nil, nil); status == 0 {
			t.Fatalf("expected a non-zero exit status code for missing arguments")
		}
	})
}
