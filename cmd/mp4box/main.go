// Command mp4box prints the box tree of an MP4 file and can write the
// parsed tree back out, checking that nothing changed on the way.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ugparu/mp4box/format/mp4"
	"github.com/ugparu/mp4box/format/mp4/mp4io"
	"github.com/ugparu/mp4box/utils/logger"
)

var errUsage = errors.New("expected exactly one input file")

func main() {
	cfg, input, err := parseArgs(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger.Configure(logger.ParseLevel(cfg.LogLevel))

	if err = run(os.Stdout, input, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// parseArgs loads the config file named by -config and lets explicitly set,
// non-empty flags override it.
func parseArgs(name string, args []string, stderr io.Writer) (Config, string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a TOML config file")
	output := fs.String("out", "", "write the re-encoded file to this path")
	verify := fs.Bool("verify", false, "re-encode and compare with the input")
	level := fs.String("log", "", "log level: trace|debug|info|warning|error")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: %s [flags] <file.mp4>\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, "", err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return Config{}, "", errUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return Config{}, "", err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out":
			if *output != "" {
				cfg.Output = *output
			}
		case "verify":
			cfg.Verify = *verify
		case "log":
			if *level != "" {
				cfg.LogLevel = *level
			}
		}
	})
	if err = ValidateConfig(cfg); err != nil {
		return Config{}, "", err
	}
	return cfg, fs.Arg(0), nil
}

func run(out io.Writer, input string, cfg Config) error {
	f, err := mp4.Open(input)
	if err != nil {
		return err
	}
	mp4io.FprintTree(out, f.Boxes, 0)

	if cfg.Verify {
		if err = f.Verify(); err != nil {
			return err
		}
		fmt.Fprintln(out, "round trip ok")
	}
	if cfg.Output != "" {
		return f.Save(cfg.Output)
	}
	return nil
}
