package main

import (
	"fmt"
	"os"
	"time"

	"github.com/hangarlabs/hangar/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version bool `help:"Print version information and exit." short:"v"`
	Debug   bool `help:"Whether to enable debug logging."`

	Build struct {
		Root string `arg:"" optional:"" name:"root" help:"Source tree to scan for resource definitions." type:"path"`
		Out  string `help:"Directory the output bundles are written to." default:"out" type:"path"`
	} `cmd:"" help:"Build every resource under a source tree."`

	Dump struct {
		Type string `help:"The type of the file to inspect, one of 'mesh', 'map', 'bundle'." default:"mesh"`
		File string `arg:"" name:"file" help:"File to inspect." type:"path"`
	} `cmd:"" help:"Inspect a mesh, map geometry or bundle archive."`
}

const DEFAULT_ROOT = "resources"

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		err := buildCommand(DEFAULT_ROOT, "out")
		if err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("hangar"),
		kong.Description("a resource build pipeline"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	if CLI.Version {
		fmt.Printf(
			"hangar %s (commit %s)\n",
			version.Version,
			version.GitCommit,
		)
		fmt.Printf(
			"built %s\n",
			version.BuildTime,
		)
		os.Exit(0)
	}

	switch ctx.Command() {
	case "build":
		fallthrough
	case "build <root>":
		root := CLI.Build.Root
		if root == "" {
			root = DEFAULT_ROOT
		}
		err := buildCommand(root, CLI.Build.Out)
		if err != nil {
			writeError(err)
		}
	case "dump <file>":
		err := dumpCommand(CLI.Dump.Type, CLI.Dump.File)
		if err != nil {
			writeError(err)
		}
	}
}
