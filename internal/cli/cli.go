// Package cli handles mode selection for the single curbside binary.
package cli

import (
	"flag"
	"fmt"
	"io"
)

const (
	ModeServer     = "server"
	ModeSubscriber = "subscriber"
)

// ParseMode splits os.Args[1:] into the run mode and the mode's own flags.
func ParseMode(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, nil
	}
	mode := args[0]
	switch mode {
	case ModeServer, ModeSubscriber:
		return mode, args[1:], nil
	default:
		return "", nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// PrintUsage writes the top-level help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  curbside <mode> [flags]

Modes:
  server       Run the ordering API, cooking timer, and event stream
  subscriber   Consume mirrored order events from RabbitMQ and print them

Common flags:
  --config     Path to the YAML config file (default "config/config.yaml")

Run "curbside <mode> --help" for mode-specific flags.`)
}

// AttachUsage gives a flag set a usage line naming its mode.
func AttachUsage(fs *flag.FlagSet, mode string) {
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: curbside %s [flags]\n\nFlags:\n", mode)
		fs.PrintDefaults()
	}
}
