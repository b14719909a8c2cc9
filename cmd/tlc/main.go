// Command tlc is a thin smoke-test entry point for the compiler core: it
// compiles one file through the full pipeline and prints its
// diagnostics or its generated code. It is deliberately not the project
// CLI (package/config discovery, watch mode, LSP) — those are explicit
// spec Non-goals; this exists so the core is exercised by something
// outside its own test suite, following the teacher's
// cmd/ailang/main.go color-palette idiom.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/sunholo/tlc/internal/cache"
	"github.com/sunholo/tlc/internal/config"
	"github.com/sunholo/tlc/internal/diag"
	"github.com/sunholo/tlc/internal/pipeline"
	"github.com/sunholo/tlc/internal/resolver"
)

var (
	red   = color.New(color.FgRed).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tlc <file.tl>")
		os.Exit(2)
	}
	path := os.Args[1]

	code, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	cfg := config.Default()
	res := resolver.New()

	var store *cache.Store
	if hash, hashErr := cfg.Hash(); hashErr == nil {
		if home, homeErr := os.UserHomeDir(); homeErr == nil {
			if s, openErr := cache.Open(home+"/.tlc/cache.sqlite", hash); openErr == nil {
				store = s
				defer store.Close()
			}
		}
	}

	p := pipeline.New(cfg, res, store, 4)
	results, err := p.Run(context.Background(), []pipeline.Source{{Path: path, Code: string(code)}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	exitCode := 0
	for _, r := range results {
		for _, d := range r.Diagnostics {
			fmt.Println(diag.Render(d, true))
			if d.Severity == diag.SeverityError {
				exitCode = 1
			}
		}
		if len(r.Diagnostics) == 0 {
			fmt.Printf("%s %s\n", green(bold("ok")), r.ID)
			fmt.Println(string(r.Artifact.Code))
		}
	}
	os.Exit(exitCode)
}
