package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	rerrors "github.com/vango-dev/ripple/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦═╗┬┌─┐┌─┐┬  ┌─┐
  ╠╦╝│├─┘├─┘│  ├┤
  ╩╚═┴┴  ┴  ┴─┘└─┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var rerr *rerrors.Error
		if errors.As(err, &rerr) {
			fmt.Fprintln(os.Stderr, rerr.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ripple",
		Short: "Tools for the ripple reactive runtime",
		Long: `Ripple is a fine-grained reactive rendering runtime for Go.

This tool helps develop against it:

  • Compare server markup against a generated tree
  • Run a demo app with the live inspector`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		hydrateCmd(),
		demoCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
