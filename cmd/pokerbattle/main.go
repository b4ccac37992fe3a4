package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the table server"`
	Simulate SimulateCmd      `cmd:"" help:"Simulate many rounds and report outcomes"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate hands given in card notation"`
	Play     PlayCmd          `cmd:"" help:"Play rounds against the enemy in the terminal"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerbattle"),
		kong.Description("Poker hand battles with a wildcard joker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	cli.Globals.applyColor()
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
