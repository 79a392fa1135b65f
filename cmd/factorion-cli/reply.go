package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tolik518/factorion-go/internal/comment"
)

func newReplyCmd() *cobra.Command {
	var configPath string
	var localeKey string
	var maxLength int
	var shorten, steps, termial, noNote bool

	cmd := &cobra.Command{
		Use:   "reply [text]",
		Short: "Print the reply the bot would post for the given text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			pre := comment.Commands{Shorten: shorten, Steps: steps, Termial: termial, NoNote: noNote}
			c := comment.New(text, struct{}{}, pre, maxLength)
			extracted := c.Extract(cfg)
			calculated := extracted.Calc(cfg, nil)
			reply := calculated.GetReply(cfg.LocaleFor(localeKey))

			if calculated.Status.NoFactorial {
				fmt.Fprintln(cmd.OutOrStdout(), "(no factorial-like expression found)")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config JSON document (defaults to built-in recommended limits)")
	cmd.Flags().StringVar(&localeKey, "locale", "en", "locale key to render the reply with")
	cmd.Flags().IntVar(&maxLength, "max-length", 10000, "maximum reply length in characters")
	cmd.Flags().BoolVar(&shorten, "shorten", false, "force scientific-notation shortening")
	cmd.Flags().BoolVar(&steps, "steps", false, "include every intermediate calculation step")
	cmd.Flags().BoolVar(&termial, "termial", false, "enable termial/triangle-number parsing")
	cmd.Flags().BoolVar(&noNote, "no-note", false, "suppress the leading note line")

	return cmd
}
