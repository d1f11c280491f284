package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/curbsidehq/curbside/cmd/server"
	"github.com/curbsidehq/curbside/cmd/subscriber"
	"github.com/curbsidehq/curbside/internal/cli"
)

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	mode, modeArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}
	if mode == "" {
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {
	case cli.ModeServer:
		fs := flag.NewFlagSet(cli.ModeServer, flag.ContinueOnError)
		configPath := fs.String("config", "config/config.yaml", "Path to the YAML config file")
		port := fs.Int("port", 0, "HTTP port override (0 uses the config value)")
		cli.AttachUsage(fs, cli.ModeServer)

		if err := fs.Parse(modeArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *port < 0 || *port > 65535 {
			fmt.Fprintln(os.Stderr, "Error: --port must be between 0 and 65535")
			fs.Usage()
			os.Exit(2)
		}

		if err := server.Run(ctx, *configPath, *port); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeSubscriber:
		fs := flag.NewFlagSet(cli.ModeSubscriber, flag.ContinueOnError)
		configPath := fs.String("config", "config/config.yaml", "Path to the YAML config file")
		cli.AttachUsage(fs, cli.ModeSubscriber)

		if err := fs.Parse(modeArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if err := subscriber.Run(ctx, *configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}
}
