package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/rlafferty/freshtracks/internal/config"
	"github.com/rlafferty/freshtracks/internal/tui"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal; keep the logger quiet.
	log := zerolog.Nop()

	if err := tui.Run(settings, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "freshtracks.json"
	}
	return home + "/.config/freshtracks/config.json"
}
