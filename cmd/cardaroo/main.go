package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cardaroo/internal/app"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func main() {
	// A .env next to the binary is convenient for the Gemini key; its
	// absence is not an error.
	_ = godotenv.Load()

	cfg := app.DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "cardaroo: %v\n", err)
		os.Exit(2)
	}

	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for the set database and logs")
	flag.StringVar(&cfg.LogPath, "log", cfg.LogPath, "JSON lines log file (empty disables logging)")
	flag.BoolVar(&cfg.ASCIIOnly, "ascii", cfg.ASCIIOnly, "draw with plain ASCII borders")
	flag.BoolVar(&cfg.DebugLayout, "debug-layout", cfg.DebugLayout, "show terminal dimensions in the header")
	flag.StringVar(&cfg.UI.StyleVariant, "style", cfg.UI.StyleVariant, "ui style: modern_arcade, cozy_clean, retro_terminal")
	flag.StringVar(&cfg.UI.MotionLevel, "motion", cfg.UI.MotionLevel, "animation level: off, reduced, full")
	flag.StringVar(&cfg.Gemini.Model, "model", cfg.Gemini.Model, "Gemini model for card and test generation")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "cardaroo: %v\n", err)
		os.Exit(2)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cardaroo: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "cardaroo: %v\n", err)
		os.Exit(1)
	}
}
