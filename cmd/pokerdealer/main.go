package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the dealer server"`
	Deal    DealCmd          `cmd:"" help:"Deal a hand locally from given entropy"`
	Verify  VerifyCmd        `cmd:"" help:"Check that shares combine to a secret"`
	Client  ClientCmd        `cmd:"" help:"Send requests to a running dealer"`
	HandLog HandLogCmd       `cmd:"hand-log" help:"Show a recorded hand log"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokerdealer"),
		kong.Description("Verifiable card dealer with secret-shared community cards"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
