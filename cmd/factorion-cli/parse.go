package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tolik518/factorion-go/internal/job"
	"github.com/tolik518/factorion-go/internal/number"
	"github.com/tolik518/factorion-go/internal/parser"
)

func newParseCmd() *cobra.Command {
	var configPath string
	var termial bool

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Print the parsed Job list for the given text, for debugging",
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

			jobs := parser.Parse(text, parser.Options{
				TermialEnabled:           termial,
				FloatPrecision:           cfg.FloatPrecision,
				IntegerConstructionLimit: cfg.Thresholds.IntegerConstructionLimit,
			})

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "(no jobs)")
				return nil
			}
			for i, j := range jobs {
				fmt.Fprintf(out, "%d: %s\n", i, describeJob(j))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config JSON document (defaults to built-in recommended limits)")
	cmd.Flags().BoolVar(&termial, "termial", false, "enable termial/triangle-number parsing")

	return cmd
}

func describeJob(j job.Job) string {
	base := describeBase(j.Base)
	return fmt.Sprintf("{base: %s, level: %d, negative: %d}", base, j.Level, j.Negative)
}

func describeBase(b job.Base) string {
	switch v := b.(type) {
	case job.NumBase:
		return describeNumber(v.Num)
	case *job.Job:
		return describeJob(*v)
	default:
		return "?"
	}
}

func describeNumber(n number.Number) string {
	switch n.Kind {
	case number.Exact:
		return n.Int.String()
	case number.Float:
		return n.Real.Text('g', 10)
	case number.Approximate:
		return fmt.Sprintf("%s x 10^%s", n.Mantissa.Text('g', 10), n.Exponent.String())
	case number.ApproximateDigits:
		return fmt.Sprintf("~%s digits", n.Digits.String())
	case number.ApproximateDigitsTower:
		return fmt.Sprintf("tower(depth=%d, base=%s)", n.TowerDepth, n.TowerBase.String())
	case number.ComplexInfinity:
		return "complex-infinity"
	default:
		return "?"
	}
}
