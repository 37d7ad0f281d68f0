package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/howsu-app/howsu-backend/internal"
	"github.com/howsu-app/howsu-backend/internal/config"
	"github.com/howsu-app/howsu-backend/internal/log"
)

var BuildVersion = "dev"

func main() {
	conf := flag.String("config", "", "path to config file (required)")
	version := flag.Bool("version", false, "print version and exit")
	validate := flag.Bool("validate", false, "validate config file and exit")
	help := flag.Bool("help", false, "print help and exit")
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}

	if *conf == "" {
		fmt.Fprintf(os.Stderr, "Error: -config flag is required\n")
		fmt.Fprintf(os.Stderr, "Run with -help for usage information\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*conf)
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *validate {
		fmt.Printf("Validating: %s\nResult: PASS\n", *conf)
		return
	}

	log.LogInfoWithFields("main", "Starting howsu-backend", map[string]any{
		"version": BuildVersion,
		"config":  *conf,
	})

	backend, err := internal.NewBackend(context.Background(), cfg)
	if err != nil {
		log.LogError("Failed to build backend: %v", err)
		os.Exit(1)
	}

	if err := backend.Run(); err != nil {
		log.LogError("Backend exited with error: %v", err)
		os.Exit(1)
	}
}
