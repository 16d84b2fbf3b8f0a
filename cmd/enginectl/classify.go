package main

import (
	"signwise/internal/services/tiering"

	"github.com/spf13/cobra"
)

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var m tiering.Metrics
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a vendor into a tier from its metrics",
		Long: `Classify a vendor into a tier from its metrics and report what it
lacks for the next tier.

Examples:
  enginectl classify --score 92 --completed 150 --first-pass-rate 0.99
  enginectl classify --score 75 --completed 60 --first-pass-rate 0.95 --ron`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			c, err := tiering.Classify(m, cfg.Tiers)
			if err != nil {
				return err
			}
			result := struct {
				tiering.Classification
				NextTier *tiering.Gap `json:"next_tier,omitempty"`
			}{Classification: c}

			gap, ok, err := tiering.NextTierGap(m, cfg.Tiers)
			if err != nil {
				return err
			}
			if ok {
				result.NextTier = &gap
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.IntVar(&m.Score, "score", 0, "Raw vendor score")
	f.IntVar(&m.CompletedSignings, "completed", 0, "Completed signings")
	f.Float64Var(&m.FirstPassRate, "first-pass-rate", 0, "First-pass funding rate in [0,1]")
	f.BoolVar(&m.CommissionEligible, "commission", false, "Vendor is commission eligible")
	f.BoolVar(&m.RONCertified, "ron", false, "Vendor is RON certified")
	return cmd
}
