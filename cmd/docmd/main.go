package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docmd/cmd/docmd/commands"
	"git.home.luguber.info/inful/docmd/internal/foundation/errors"
	"git.home.luguber.info/inful/docmd/internal/logfields"
	"git.home.luguber.info/inful/docmd/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()

	parser := kong.Parse(cli,
		kong.Name("docmd"),
		kong.Description("Render markdown with ::: directives to HTML"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	err := parser.Run(global, cli)
	if ferr := global.FlushMetrics(); ferr != nil {
		if err == nil {
			err = ferr
		} else {
			slog.Warn("Failed to write metrics", logfields.Error(ferr))
		}
	}
	if err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
	os.Exit(global.ExitCode)
}
