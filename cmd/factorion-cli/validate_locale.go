package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tolik518/factorion-go/internal/locale"
)

func newValidateLocaleCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate-locale <path>",
		Short: "Schema-validate a locale JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := validateLocaleFile(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")

			if !watch {
				return nil
			}
			return watchLocaleFile(path)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-validate on every file change")
	return cmd
}

func validateLocaleFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return locale.Validate(raw)
}

// watchLocaleFile re-validates path on every filesystem change event until
// the process is interrupted, the CLI-only counterpart to the core's
// stateless, one-shot Validate call (fsnotify is never imported by the
// core itself).
func watchLocaleFile(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("watching locale file for changes", "path", path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := validateLocaleFile(path); err != nil {
				slog.Error("locale file failed validation", "path", path, "error", err)
				continue
			}
			slog.Info("locale file re-validated OK", "path", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}
