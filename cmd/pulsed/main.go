package main

import (
	"flag"
	"fmt"
	"os"
	"pulsed/internal/di"
	"pulsed/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the yaml config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to stderr as well as to the log files")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "pulsed: %s\n", err)
		os.Exit(1)
	}
}
