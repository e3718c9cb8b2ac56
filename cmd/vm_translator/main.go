package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/teris-io/cli"
	"go.n2tcore.dev/toolchain/pkg/asm"
	"go.n2tcore.dev/toolchain/pkg/vm"
)

var Description = strings.ReplaceAll(`
The VM Translator translates programs (composed of multiple modules/files) written in
the VM language into Hack assembly code that can be further elaborated. The VM language
is a higher-level (bytecode'like) language tailored for use with the Hack computer arch.
`, "\n", " ")

var VmTranslator = cli.New(Description).
	// 'AsOptional()' allows to have more than one input, either .vm files or directories.
	WithArg(cli.NewArg("inputs", "The bytecode (.vm) file(s) or directories to be compiled").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "The compiled binary output (.asm)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("bootstrap", "Forces bootstrap code on/off; defaults to on for a directory or multiple inputs, off for a single file").
		WithType(cli.TypeBool)).
	WithAction(Handler)

// Bootstrap sequence name, namespacing the synthetic call-to-Sys.init that never
// appears in any translation unit provided by the caller.
const bootstrapModule = "Bootstrap"

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 || options["output"] == "" {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	output, err := os.Create(options["output"])
	if err != nil {
		fmt.Printf("ERROR: Unable to open output file: %s\n", err)
		return -1
	}
	defer output.Close()

	// The aggregation of all the Translation Units (TUs) found during the input walk (just
	// the paths). Per spec, input is either a single .vm file or a directory of them; a
	// directory (or more than one input) makes this a multi-file program.
	TUs, multiFile := []string{}, len(args) > 1

	for _, input := range args {
		info, err := os.Stat(input)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		if !info.IsDir() {
			TUs = append(TUs, input)
			continue
		}

		multiFile = true
		err = filepath.Walk(input, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".vm" {
				return nil // We recurse on dirs and ignore other filetypes
			}

			TUs = append(TUs, path)
			return nil
		})
		if err != nil {
			fmt.Printf("ERROR: Unable to walk input path '%s': %s\n", input, err)
			return -1
		}
	}

	bootstrap, err := resolveBootstrap(options, multiFile)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	// Allocates a 'vm.Program' that keeps every translation unit (the .vm files) in the
	// order provided by the caller, since modules are parsed and lowered independently
	// but later concatenated into a single monolithic Asm output.
	program := vm.Program{}

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		// Instantiate a parser for the Vm program
		parser := vm.NewParser(bytes.NewReader(content))
		// Parses the input file content and extract an AST (as a 'vm.Module') from it.
		module, err := parser.Parse()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
			return -1
		}

		extension := path.Ext(tu)
		name := strings.TrimSuffix(path.Base(tu), extension)
		program = append(program, vm.ModuleFile{Name: name, Module: module})
	}

	// When bootstrapping, a synthetic 'call Sys.init 0' is lowered ahead of every other
	// translation unit, exercising the very same calling convention (save frame, reposition
	// ARG/LCL, jump, declare return label) any other 'call' site does rather than inlining
	// a bare jump that would leave LCL/ARG unset for a Sys.init relying on its own locals.
	if bootstrap {
		program = append(vm.Program{{
			Name:   bootstrapModule,
			Module: vm.Module{vm.FuncCallOp{Name: "Sys.init", ArgsNum: 0}},
		}}, program...)
	}

	// Instantiate a lowerer to convert the program from Vm to Asm
	lowerer := vm.NewLowerer(program)
	// Lowers the vm.Program to an in-memory/IR representation of its Asm counterpart 'asm.Program'.
	asmProgram, err := lowerer.Lowerer()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'lowering' pass: %s\n", err)
		return -1
	}

	// Sets the Stack Pointer to its base location at memory location 256, ahead of the
	// lowered 'call Sys.init 0' sequence prepended above.
	if bootstrap {
		asmProgram = append(asm.Program{
			asm.AInstruction{Location: "256"},
			asm.CInstruction{Dest: "D", Comp: "A"},
			asm.AInstruction{Location: "SP"},
			asm.CInstruction{Dest: "M", Comp: "D"},
		}, asmProgram...)
	}

	// Now, instantiates a code generator for the Asm (compiled) program
	codegen := asm.NewCodeGenerator(asmProgram)
	// Iterates over each instruction and spits out the relative textual representation.
	compiled, err := codegen.Generate()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	for _, comp := range compiled {
		line := fmt.Sprintf("%s\n", comp)
		output.Write([]byte(line))
	}

	return 0
}

// resolveBootstrap decides whether to emit bootstrap code. An explicit '--bootstrap'
// option always wins (by value, so '--bootstrap=false' suppresses it even for a
// directory input); absent that, it defaults on for a directory/multi-file program
// and off for a single file, per spec.
func resolveBootstrap(options map[string]string, multiFile bool) (bool, error) {
	raw, present := options["bootstrap"]
	if !present {
		return multiFile, nil
	}
	if raw == "" {
		return true, nil // A bare '--bootstrap' flag with no value means "on"
	}

	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for --bootstrap, expected a boolean", raw)
	}
	return enabled, nil
}

func main() { os.Exit(VmTranslator.Run(os.Args, os.Stdout)) }
