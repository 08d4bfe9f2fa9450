package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-contract/contract"
	"github.com/wippyai/wasm-contract/extract"
	"github.com/wippyai/wasm-contract/text"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a compiled wasm module")
		assertFile  = flag.String("assert", "", "Contract file to check the module against")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		if logger, err := zap.NewDevelopment(); err == nil {
			contract.SetLogger(logger)
			extract.SetLogger(logger)
		}
	}

	files := flag.Args()
	if *wasmFile == "" && len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wasm-contract <file.contract> [more.contract ...]")
		fmt.Fprintln(os.Stderr, "       wasm-contract -wasm <file.wasm>")
		fmt.Fprintln(os.Stderr, "       wasm-contract -wasm <file.wasm> -assert <file.contract>")
		fmt.Fprintln(os.Stderr, "       wasm-contract -i <file.contract> [more.contract ...]  (interactive mode)")
		os.Exit(1)
	}

	if err := run(*wasmFile, *assertFile, files, *interactive); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

func run(wasmFile, assertFile string, files []string, interactive bool) error {
	if wasmFile != "" {
		data, err := os.ReadFile(wasmFile)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		if assertFile != "" {
			asserted, err := loadContract(assertFile)
			if err != nil {
				return err
			}
			if err := extract.Check(data, asserted); err != nil {
				return err
			}
			fmt.Printf("%s satisfies %s\n", wasmFile, assertFile)
			return nil
		}

		c, err := extract.Contract(data)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}
		if interactive {
			return runInteractive(wasmFile, c)
		}
		printContract(c)
		return nil
	}

	merged, err := mergeFiles(files)
	if err != nil {
		return err
	}
	if interactive {
		return runInteractive(strings.Join(files, " "), merged)
	}
	printContract(merged)
	return nil
}

func loadContract(path string) (*contract.Contract, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	c, err := text.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// mergeFiles folds the contract files strictly left to right so a conflict
// is attributable to the first file that disagrees with those before it.
func mergeFiles(paths []string) (*contract.Contract, error) {
	merged := contract.New()
	for _, path := range paths {
		c, err := loadContract(path)
		if err != nil {
			return nil, err
		}
		merged, err = merged.Merge(c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return merged, nil
}

// printContract writes the surface as assertion text, so the output can be
// fed back in as a contract file.
func printContract(c *contract.Contract) {
	for _, key := range sortedImportKeys(c) {
		fmt.Printf("(assert_import %s)\n", c.Imports[key])
	}
	for _, name := range sortedExportNames(c) {
		fmt.Printf("(assert_export %s)\n", c.Exports[name])
	}
}

func sortedImportKeys(c *contract.Contract) []contract.ImportKey {
	keys := make([]contract.ImportKey, 0, len(c.Imports))
	for key := range c.Imports {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Namespace != keys[j].Namespace {
			return keys[i].Namespace < keys[j].Namespace
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func sortedExportNames(c *contract.Contract) []string {
	names := make([]string, 0, len(c.Exports))
	for name := range c.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
