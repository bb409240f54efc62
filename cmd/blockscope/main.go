package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/block"
	"github.com/wippyai/blocks/runtime"
	"github.com/wippyai/blocks/wasmblock"
)

func main() {
	var (
		layout      = flag.Bool("layout", false, "Print literal and descriptor layouts for every target")
		demo        = flag.Bool("demo", false, "Run a scripted block life cycle on both runtimes")
		interactive = flag.Bool("i", false, "Interactive mode with TUI (default on a terminal)")
		verbose     = flag.Bool("v", false, "Development logging")
	)
	flag.Parse()

	cfg, err := blocks.ConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Debug = true
	}

	log := zap.NewNop()
	if cfg.Debug {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
	}
	runtime.SetLogger(log.Named("runtime"))
	block.SetLogger(log.Named("block"))
	wasmblock.SetLogger(log.Named("wasmblock"))
	block.Configure(cfg)

	if !*layout && !*demo && !*interactive {
		if term.IsTerminal(int(os.Stdout.Fd())) && !cfg.Debug {
			*interactive = true
		} else {
			*layout = true
		}
	}

	if *layout {
		printLayouts(os.Stdout)
	}

	if *demo {
		if err := runDemo(context.Background(), os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}
