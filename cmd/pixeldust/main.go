package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/pixeldust"
)

func init() {
	// GLFW and the frame loop must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pixeldust", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: pixeldust [-config file.json] [flags] image\n")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "JSON config file; flags override it")
	flagged := pixeldust.DefaultConfig()
	pixeldust.RegisterFlags(fs, &flagged)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := pixeldust.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = pixeldust.LoadConfigFile(*configPath, cfg); err != nil {
			return err
		}
	}
	pixeldust.MergeFlags(fs, &cfg, flagged)
	if fs.NArg() > 0 {
		cfg.Image = fs.Arg(0)
	}
	if cfg.Image == "" {
		fs.Usage()
		return errors.New("no image given")
	}

	app, err := pixeldust.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Shutdown()
	_, err = app.RunFrames(cfg.FrameBudget())
	return err
}
