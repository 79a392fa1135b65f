// Command factorion-cli is an offline harness for the factorion core: read
// text from stdin or an argument, run it through parse/calculate/format,
// and print the result - the Go-native equivalent of
// original_source/factorion_demo.rs, hand-written (not generated) in the
// &cobra.Command{Use, Short, RunE} shape pkgs/engine/engine.go emits for
// generated CLIs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes, matching cmd/devcmd/main.go's explicit-constant convention.
const (
	exitSuccess = 0
	exitUsage   = 1
	exitIO      = 2
	exitRuntime = 3
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "factorion-cli",
		Short:         "Offline harness for the factorion text-scanning/arithmetic core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newReplyCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newValidateLocaleCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case os.IsNotExist(err):
		return exitIO
	default:
		return exitRuntime
	}
}
