// Command udfsql runs SQL scripts with user-defined functions against JSON
// and SQLite tables, or starts an interactive shell.
package main

import (
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
)

const version = "0.1.0"

// Globals are the flags shared by every command. Flags override the
// configuration file.
type Globals struct {
	Config      string   `name:"config" short:"c" help:"YAML configuration file" type:"existingfile"`
	Data        []string `name:"data" short:"d" help:"Directory of JSON table files (repeatable)" type:"existingdir"`
	LogLevel    string   `name:"log-level" help:"Log level: debug, info, warn, error, off"`
	ErrorPolicy string   `name:"on-error" help:"Row error policy: abort or skip"`
	DumpIR      bool     `name:"dump-ir" help:"Print the compiled body of each created function"`
}

// cli defines the command-line interface for udfsql.
type cli struct {
	Globals

	Run       RunCmd       `cmd:"" help:"Execute SQL script files"`
	Repl      ReplCmd      `cmd:"" default:"1" help:"Start the interactive shell"`
	Functions FunctionsCmd `cmd:"" help:"List registered functions"`
	Version   VersionCmd   `cmd:"" help:"Print version information"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("udfsql"),
		kong.Description("SQL engine with user-defined scalar functions"),
		kong.UsageOnError(),
		kong.Vars{"history_file": filepath.Join(os.TempDir(), ".udfsql_history")},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}
}

func main() {
	var CLI cli
	ctx := kong.Parse(&CLI, kongOptions()...)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
