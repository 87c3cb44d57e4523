// estegano hides files inside PNG and BMP images, recovers them, and erases
// them again.
//
//	estegano hide   --in cover.png --hide secret/ [--out stego.png] [--pass PASSWORD | --ask-pass]
//	estegano unhide --in stego.png [--out DIR] [--pass PASSWORD | --ask-pass]
//	estegano clean  --in stego.png [--out clean.png]
//
// Without a password the hidden data is still recoverable by anyone running
// unhide; it is only hidden, not secret.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/zedseven/estegano"
	"github.com/zedseven/estegano/internal/config"
)

type action int

const (
	actionHide action = iota
	actionUnhide
	actionClean
)

// Program entry point

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	in, out, hide string
	password      []byte
	askPass       bool
	verbose       bool
	configPath    string
}

func run(args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("estegano", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	var opts options
	var password string
	flagSet.StringVarP(&opts.in, "in", "i", "", "the image to read")
	flagSet.StringVarP(&opts.out, "out", "o", "", "the image to write (hide, clean) or the directory to unpack into (unhide)")
	flagSet.StringVar(&opts.hide, "hide", "", "the file or directory to hide")
	flagSet.StringVarP(&password, "pass", "p", "", "the password; an empty value is a valid password")
	flagSet.BoolVar(&opts.askPass, "ask-pass", false, "prompt for the password without echoing it")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "show every step")
	flagSet.StringVar(&opts.configPath, "config", "", "YAML file with defaults (or set "+config.EnvVar+")")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) != 1 {
		printHelp(stderr, flagSet)
		return errors.New("exactly one action is required: hide, unhide or clean")
	}
	switch strings.ToLower(positional[0]) {
	case "version":
		fmt.Fprintf(stdout, "estegano v%s\n", estegano.Version())
		return nil
	case "help":
		printHelp(stdout, flagSet)
		return nil
	}
	act, err := parseAction(positional[0])
	if err != nil {
		return err
	}

	if flagSet.Changed("pass") && opts.askPass {
		return errors.New("--pass and --ask-pass are mutually exclusive")
	}
	if flagSet.Changed("pass") {
		opts.password = []byte(password)
	}
	if opts.askPass {
		if opts.password, err = readPassword(stderr); err != nil {
			return err
		}
	}

	cfg, err := config.Load(config.Path(opts.configPath))
	if err != nil {
		return err
	}
	return execute(act, opts, cfg, stderr)
}

func execute(act action, opts options, cfg config.Config, stderr io.Writer) error {
	level := slog.LevelInfo
	if opts.verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("starting", "version", estegano.Version())

	pngLevel, err := cfg.PNGLevel()
	if err != nil {
		return err
	}

	switch act {
	case actionHide:
		if opts.password == nil {
			logger.Warn("no password given; anyone can recover the hidden data")
		}
		_, err := estegano.HideFile(estegano.HideConfig{
			ImagePath:      opts.in,
			FilePath:       opts.hide,
			OutPath:        opts.out,
			Password:       opts.password,
			Compression:    cfg.Compression,
			PNGCompression: pngLevel,
			Logger:         logger,
		})
		return err
	case actionUnhide:
		return estegano.Dig(estegano.DigConfig{
			ImagePath: opts.in,
			OutPath:   opts.out,
			Password:  opts.password,
			Logger:    logger,
		})
	default:
		return estegano.CleanFile(estegano.CleanConfig{
			ImagePath:      opts.in,
			OutPath:        opts.out,
			PNGCompression: pngLevel,
			Logger:         logger,
		})
	}
}

func parseAction(s string) (action, error) {
	switch strings.ToUpper(s) {
	case "HIDE":
		return actionHide, nil
	case "UNHIDE":
		return actionUnhide, nil
	case "CLEAN":
		return actionClean, nil
	default:
		return 0, fmt.Errorf("unknown action %q (want hide, unhide or clean)", s)
	}
}

func readPassword(stderr io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("no terminal available for the password prompt (use --pass)")
	}

	fmt.Fprint(stderr, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	// ReadPassword returns nil for an empty line, which would mean "no password".
	if password == nil {
		password = []byte{}
	}
	return password, nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "estegano v%s\n\n", estegano.Version())
	fmt.Fprintln(w, "Usage: estegano ACTION --in IMAGE [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Actions:")
	fmt.Fprintln(w, "  hide     hide the --hide file or directory in the image")
	fmt.Fprintln(w, "  unhide   recover hidden files into the --out directory")
	fmt.Fprintln(w, "  clean    erase hidden data from the image")
	fmt.Fprintln(w, "  version  print the version")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, flagSet.FlagUsages())
}
