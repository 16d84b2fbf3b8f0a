package main

import (
	"fmt"

	"signwise/internal/config/engine"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Load and validate an engine config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no config file given")
			}

			cfg, err := engine.Load(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d signing types, pilot allotment %d)\n",
				path, len(cfg.Rates.BaseRates), cfg.Pilot.Allotment)
			return nil
		},
	}
}
