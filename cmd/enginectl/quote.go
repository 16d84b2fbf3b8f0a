package main

import (
	"fmt"
	"time"

	"signwise/internal/services/fees"

	"github.com/spf13/cobra"
)

type quoteOptions struct {
	signingType string
	miles       float64
	rush        bool
	leadTime    time.Duration
	sla         string
	at          string
	documents   int
	loanType    string
	format      string
}

func newQuoteCmd(root *rootOptions) *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the itemized fee breakdown of an assignment",
		Long: `Compute the itemized fee breakdown of an assignment.

Examples:
  enginectl quote --signing-type loan_signing --miles 32 --at 2026-03-14T19:30:00-05:00
  enginectl quote --rush --lead-time 90m --sla express --at 2026-03-10T10:00:00Z --format human`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.signingType, "signing-type", string(fees.SigningLoan), "Signing type")
	f.Float64Var(&opts.miles, "miles", 0, "Travel distance in miles")
	f.BoolVar(&opts.rush, "rush", false, "Rush booking")
	f.DurationVar(&opts.leadTime, "lead-time", 0, "Time between booking and the signing")
	f.StringVar(&opts.sla, "sla", string(fees.SLAStandard), "SLA tier (standard, priority, express, rescue)")
	f.StringVar(&opts.at, "at", "", "Scheduled local time, RFC 3339 (required)")
	f.IntVar(&opts.documents, "documents", 0, "Number of documents in the package")
	f.StringVar(&opts.loanType, "loan-type", string(fees.LoanNone), "Loan type")
	f.StringVar(&opts.format, "format", "json", "Output format (json, human)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func runQuote(cmd *cobra.Command, root *rootOptions, opts *quoteOptions) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}

	at, err := time.Parse(time.RFC3339, opts.at)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	b, err := fees.ComputeBreakdown(fees.Input{
		SigningType:   fees.SigningType(opts.signingType),
		Miles:         opts.miles,
		Rush:          opts.rush,
		LeadTime:      opts.leadTime,
		SLATier:       fees.SLATier(opts.sla),
		ScheduledAt:   at,
		DocumentCount: opts.documents,
		LoanType:      fees.LoanType(opts.loanType),
	}, cfg.Rates)
	if err != nil {
		return err
	}

	if opts.format != "human" {
		return writeJSON(cmd.OutOrStdout(), b)
	}

	out := cmd.OutOrStdout()
	for _, d := range b.Descriptions {
		fmt.Fprintln(out, d)
	}
	fmt.Fprintf(out, "Total: %s\n", fees.FormatMinor(b.TotalMinorUnits, b.Currency))
	return nil
}
