package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"go.n2tcore.dev/toolchain/pkg/jack"
)

var Description = strings.ReplaceAll(`
The Jack Analyzer reads Jack source files (single files or whole directories) and
emits their tokenization and parse-tree as XML, following the grammar of the Jack
language. It performs no semantic analysis: no type checking, no scope resolution
and no code generation, it only tokenizes and parses.
`, "\n", " ")

var JackAnalyzer = cli.New(Description).
	// 'AsOptional()' allows to have more than one input, either .jack files or directories.
	WithArg(cli.NewArg("inputs", "The source (.jack) files or directories to be analyzed").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("tokens-only", "Only emits the token dump (the 'T.xml' file), skips the parse tree").
		WithType(cli.TypeBool)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Printf("ERROR: Not enough arguments provided, use --help\n")
		return -1
	}

	// The aggregation of all the Translation Units (TUs) found during the input walk (just the paths).
	TUs := []string{}
	for _, input := range args {
		err := filepath.Walk(input, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".jack" {
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

	_, tokensOnly := options["tokens-only"]

	for _, tu := range TUs {
		content, err := os.ReadFile(tu)
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}

		tokens, err := jack.NewTokenizer(content).Tokenize()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'tokenizing' pass: %s\n", err)
			return -1
		}

		extension := path.Ext(tu)
		stem := strings.TrimSuffix(tu, extension)

		tokensOut, err := os.Create(stem + "T.xml")
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return -1
		}
		if err := jack.WriteTokenXML(tokensOut, tokens); err != nil {
			fmt.Printf("ERROR: Unable to write token dump: %s\n", err)
			tokensOut.Close()
			return -1
		}
		tokensOut.Close()

		if tokensOnly {
			continue
		}

		treeOut, err := os.Create(stem + ".xml")
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return -1
		}
		if err := jack.NewParser(tokens, treeOut).ParseClass(); err != nil {
			fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
			treeOut.Close()
			return -1
		}
		treeOut.Close()
	}

	return 0
}

func main() { os.Exit(JackAnalyzer.Run(os.Args, os.Stdout)) }
