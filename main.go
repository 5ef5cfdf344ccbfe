package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-keyboard/config"
	"go-keyboard/debug"
)

func main() {
	userCfg := config.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := config.CandidatePaths(userCfg)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("go-keyboard"),
		kong.Description("Microtonal on-screen musical keyboard"),
		kong.UsageOnError(),
		// flags override config values
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	if err := setupLogging(cli.Log); err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(2)
	}
	defer debug.Disable()

	ctx.Bind(debug.Logger())
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// setupLogging turns the debug log on when a file is given or the level asks
// for more than info.
func setupLogging(l config.Log) error {
	level, err := debug.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	if l.File == "" && level >= 0 {
		return nil
	}
	return debug.Enable(l.File, level)
}
