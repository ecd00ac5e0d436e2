package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/rulego/udfsql"
	"github.com/rulego/udfsql/config"
	"github.com/rulego/udfsql/functions"
	"github.com/rulego/udfsql/logger"
	"github.com/rulego/udfsql/query"
	"github.com/rulego/udfsql/utils/table"
)

// RunCmd executes script files in order.
type RunCmd struct {
	Files []string `arg:"" help:"SQL script files" type:"existingfile"`
}

// Run stops at the first file containing a failing statement; the
// remaining statements of that file still run.
func (c *RunCmd) Run(ctx *kong.Context, g *Globals) error {
	e, closeFn, err := newEngine(context.Background(), g, os.Stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, path := range c.Files {
		if err := runFile(context.Background(), e, path, ctx.Stdout, g.DumpIR); err != nil {
			return err
		}
	}
	return nil
}

// ReplCmd starts the interactive shell.
type ReplCmd struct {
	History string `name:"history" help:"History file" default:"${history_file}"`
}

func (c *ReplCmd) Run(ctx *kong.Context, g *Globals) error {
	e, closeFn, err := newEngine(context.Background(), g, os.Stderr)
	if err != nil {
		return err
	}
	defer closeFn()
	return startREPL(e, ctx.Stdout, c.History, g.DumpIR)
}

// FunctionsCmd lists registered functions.
type FunctionsCmd struct {
	Type string `name:"type" short:"t" enum:"all,user,builtin" default:"all" help:"Filter by function type"`
}

func (c *FunctionsCmd) Run(ctx *kong.Context, g *Globals) error {
	e, closeFn, err := newEngine(context.Background(), g, os.Stderr)
	if err != nil {
		return err
	}
	defer closeFn()

	defs := e.Functions()
	if c.Type != "all" {
		defs = e.Registry().ListByType(functions.FunctionType(c.Type))
	}
	printFunctions(ctx.Stdout, defs)
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "udfsql %s\n", version)
	return nil
}

// newEngine builds an engine from the configuration file and flags, opens
// the configured tables and runs the configured startup scripts.
func newEngine(ctx context.Context, g *Globals, logOut io.Writer) (*udfsql.Engine, func(), error) {
	cfg := config.Defaults()
	if g.Config != "" {
		var err error
		if cfg, err = config.Load(g.Config, os.Getenv); err != nil {
			return nil, nil, err
		}
	}
	if g.LogLevel != "" {
		level, err := logger.ParseLevel(g.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		cfg.LogLevel = level
	}
	if g.ErrorPolicy != "" {
		policy, err := query.ParseErrorPolicy(g.ErrorPolicy)
		if err != nil {
			return nil, nil, err
		}
		cfg.ErrorPolicy = policy
	}

	opts := append(cfg.Options(), udfsql.WithLogOutput(logOut, cfg.LogLevel))
	e := udfsql.New(opts...)

	closeTables, err := cfg.OpenTables(ctx, e.Catalog())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := closeTables(); err != nil {
			e.Logger().Warn("close tables: %v", err)
		}
	}
	for _, dir := range g.Data {
		if _, err := e.LoadTables(ctx, dir); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	for _, script := range cfg.Scripts {
		if err := runFile(ctx, e, script, io.Discard, false); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return e, closeFn, nil
}

// runFile executes every statement of the file at path and prints the
// results. It returns an error when any statement failed.
func runFile(ctx context.Context, e *udfsql.Engine, path string, out io.Writer, dumpIR bool) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	failed := printResults(out, e.Execute(ctx, string(script)), dumpIR)
	if failed > 0 {
		return fmt.Errorf("%s: %d statements failed", path, failed)
	}
	return nil
}

// printResults prints each result and returns the number of failures.
func printResults(w io.Writer, results []*udfsql.Result, dumpIR bool) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if r.Kind == udfsql.KindSelect && r.Columns != nil {
			table.PrintTable(w, r.Columns, r.Rows)
			for _, rowErr := range r.RowErrors {
				fmt.Fprintf(w, "skipped %v\n", rowErr)
			}
			if r.Err != nil {
				fmt.Fprintln(w, r.Message())
			}
			continue
		}
		fmt.Fprintln(w, r.Message())
		if r.Function != nil {
			for _, warning := range r.Function.Warnings {
				fmt.Fprintf(w, "  warning: %s\n", warning)
			}
			if dumpIR {
				dumpConfig.Fdump(w, r.Function.Body)
			}
		}
	}
	return failed
}

var dumpConfig = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}

func printFunctions(w io.Writer, defs []*functions.FunctionDef) {
	for _, def := range defs {
		line := fmt.Sprintf("%-8s %s", def.Type, def.Signature())
		if def.Description != "" {
			line += "  -- " + def.Description
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "(%d functions)\n", len(defs))
}
