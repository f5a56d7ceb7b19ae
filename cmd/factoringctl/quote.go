package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Ban68/LePret-sub001/internal/domain/service"
	"github.com/Ban68/LePret-sub001/internal/infrastructure/config"
)

type quoteOptions struct {
	amount     string
	annualRate string
	advancePct string
	asJSON     bool
}

func quoteCmd() *cobra.Command {
	var opts quoteOptions

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a standard offer with the configured fee policy",
		Long: `Price a standard offer without touching any store.

The fee policy comes from the OFFER_* environment variables. The rate is a
fraction (0.30 is 30% a year).

Examples:
  factoringctl quote --amount 10000000
  factoringctl quote --amount 2500000 --annual-rate 0.24 --advance-pct 90 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Offer.Validate(); err != nil {
				return fmt.Errorf("offer policy: %w", err)
			}
			return runQuote(cmd, service.NewOfferCalculator(cfg.Offer), opts, time.Now().UTC())
		},
	}

	cmd.Flags().StringVar(&opts.amount, "amount", "", "requested amount (required)")
	cmd.Flags().StringVar(&opts.annualRate, "annual-rate", "", "annual rate as a fraction; defaults to the policy")
	cmd.Flags().StringVar(&opts.advancePct, "advance-pct", "", "advance percentage 0-100; defaults to the policy")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runQuote(cmd *cobra.Command, calc *service.OfferCalculator, opts quoteOptions, now time.Time) error {
	amount, err := decimal.NewFromString(opts.amount)
	if err != nil || !amount.IsPositive() {
		return fmt.Errorf("--amount must be a positive number, got %q", opts.amount)
	}

	var params service.StandardParams
	if opts.annualRate != "" {
		rate, err := decimal.NewFromString(opts.annualRate)
		if err != nil {
			return fmt.Errorf("--annual-rate: %w", err)
		}
		params.AnnualRate = &rate
	}
	if opts.advancePct != "" {
		pct, err := decimal.NewFromString(opts.advancePct)
		if err != nil {
			return fmt.Errorf("--advance-pct: %w", err)
		}
		params.AdvancePct = &pct
	}

	terms := calc.Standard(amount, params, now)
	out := cmd.OutOrStdout()

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"amount":         amount,
			"annual_rate":    terms.AnnualRate,
			"advance_pct":    terms.AdvancePct,
			"fees":           terms.Fees,
			"advance_amount": terms.AdvanceAmount,
			"net_amount":     terms.NetAmount,
			"valid_until":    terms.ValidUntil,
		})
	}

	fmt.Fprintf(out, "amount:          %s\n", amount.StringFixed(0))
	fmt.Fprintf(out, "annual rate:     %s\n", terms.AnnualRate.String())
	fmt.Fprintf(out, "advance pct:     %s\n", terms.AdvancePct.String())
	fmt.Fprintf(out, "advance amount:  %s\n", terms.AdvanceAmount.StringFixed(0))

	names := make([]string, 0, len(terms.Fees))
	for name := range terms.Fees {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "fee %-12s %s\n", name+":", terms.Fees[name].StringFixed(0))
	}

	fmt.Fprintf(out, "net amount:      %s\n", terms.NetAmount.StringFixed(0))
	fmt.Fprintf(out, "valid until:     %s\n", terms.ValidUntil.Format(time.RFC3339))
	return nil
}
