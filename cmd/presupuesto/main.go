package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"presupuesto/internal/cli"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	args struct {
		Version kong.VersionFlag `help:"Show version information"`
		EnvFile []string         `help:"Env files to load before reading the environment." type:"existingfile" placeholder:"PATH"`
		Commands
	}
)

func main() {
	ctx := kong.Parse(&args,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("presupuesto"),
		kong.Description("Household budget tracker: incomes, expenses and monthly budgets."),
		kong.UsageOnError(),
	)

	cfg, err := cli.LoadConfig(args.EnvFile...)
	ctx.FatalIfErrorf(err)
	logger := cli.SetupLogger(cfg.LogLevel)

	err = ctx.Run(&App{cfg: cfg, logger: logger, out: ctx.Stdout})
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
