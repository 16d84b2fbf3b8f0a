package main

import (
	"encoding/json"
	"io"

	"signwise/internal/config/engine"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "enginectl",
		Short:         "Assignment economics engine tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Engine config file (defaults to the built-in reference configuration)")

	cmd.AddCommand(newQuoteCmd(opts), newClassifyCmd(opts), newValidateCmd(opts))
	return cmd
}

func (o *rootOptions) load() (*engine.Config, error) {
	if o.configPath == "" {
		return engine.Default(), nil
	}
	return engine.Load(o.configPath)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
