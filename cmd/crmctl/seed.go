package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"donorcrm/internal/infra"
	"donorcrm/internal/sqlinline"
)

// Fixture is the YAML layout accepted by `crmctl seed`.
type Fixture struct {
	Companies     []CompanyFixture      `yaml:"companies"`
	CostCenters   []CostCenterFixture   `yaml:"cost_centers"`
	FundClasses   []FundClassFixture    `yaml:"fund_classes"`
	ExchangeRates []ExchangeRateFixture `yaml:"exchange_rates"`
}

type CompanyFixture struct {
	Name            string `yaml:"name"`
	DefaultCurrency string `yaml:"default_currency"`
}

type CostCenterFixture struct {
	Name         string `yaml:"name"`
	Company      string `yaml:"company"`
	Abbreviation string `yaml:"abbreviation"`
	IsGroup      bool   `yaml:"is_group"`
}

type FundClassFixture struct {
	Name       string                    `yaml:"name"`
	Title      string                    `yaml:"fund_class_name"`
	Defaults   []FundClassDefaultFixture `yaml:"defaults"`
	Deductions []DeductionRuleFixture    `yaml:"deductions"`
}

type FundClassDefaultFixture struct {
	Company           string `yaml:"company"`
	EquityAccount     string `yaml:"equity_account"`
	ReceivableAccount string `yaml:"receivable_account"`
	CostCenter        string `yaml:"cost_center"`
	ServiceArea       string `yaml:"service_area"`
	SubserviceArea    string `yaml:"subservice_area"`
	Product           string `yaml:"product"`
}

type DeductionRuleFixture struct {
	Company    string  `yaml:"company"`
	Account    string  `yaml:"account"`
	Percentage float64 `yaml:"percentage"`
	MinPercent float64 `yaml:"min_percent"`
	MaxPercent float64 `yaml:"max_percent"`
	CostCenter string  `yaml:"cost_center"`
	Project    string  `yaml:"project"`
}

type ExchangeRateFixture struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Date string  `yaml:"date"`
	Rate float64 `yaml:"rate"`
}

// SeedCounts reports how many rows of each kind were written.
type SeedCounts struct {
	Companies     int
	CostCenters   int
	FundClasses   int
	Defaults      int
	Deductions    int
	ExchangeRates int
}

func (c SeedCounts) String() string {
	return fmt.Sprintf("companies=%d cost_centers=%d fund_classes=%d defaults=%d deductions=%d exchange_rates=%d",
		c.Companies, c.CostCenters, c.FundClasses, c.Defaults, c.Deductions, c.ExchangeRates)
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load fund classes, deduction rules, cost centers and exchange rates from YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			fx, err := parseFixture(f)
			if err != nil {
				return err
			}

			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			counts, err := seed(cmd.Context(), e.runner, fx)
			if err != nil {
				return err
			}
			e.logger.Info().Str("file", file).Msg("seed: done")
			cmd.Println(counts.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "fixtures.yaml", "fixture file")
	return cmd
}

// parseFixture decodes and validates a fixture document.
func parseFixture(r io.Reader) (Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	for i, c := range fx.Companies {
		if strings.TrimSpace(c.Name) == "" {
			return Fixture{}, fmt.Errorf("companies[%d]: name is required", i)
		}
	}
	for i, fc := range fx.FundClasses {
		if strings.TrimSpace(fc.Name) == "" {
			return Fixture{}, fmt.Errorf("fund_classes[%d]: name is required", i)
		}
		for j, d := range fc.Deductions {
			if d.Company == "" || d.Account == "" {
				return Fixture{}, fmt.Errorf("fund_classes[%d].deductions[%d]: company and account are required", i, j)
			}
			if d.Percentage < 0 || d.Percentage > 100 {
				return Fixture{}, fmt.Errorf("fund_classes[%d].deductions[%d]: percentage must be within 0..100", i, j)
			}
		}
	}
	for i, r := range fx.ExchangeRates {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return Fixture{}, fmt.Errorf("exchange_rates[%d]: date must be YYYY-MM-DD", i)
		}
		if r.Rate <= 0 {
			return Fixture{}, fmt.Errorf("exchange_rates[%d]: rate must be positive", i)
		}
	}
	return fx, nil
}

// seed writes the fixture in one transaction. Deduction rules of a fund
// class and company pair are replaced, everything else is upserted.
func seed(ctx context.Context, tx infra.TxRunner, fx Fixture) (SeedCounts, error) {
	var counts SeedCounts
	err := tx.WithTx(ctx, func(q infra.SQLExecutor) error {
		counts = SeedCounts{}
		for _, c := range fx.Companies {
			if _, err := q.Exec(ctx, sqlinline.QUpsertCompany, c.Name, strings.ToUpper(c.DefaultCurrency)); err != nil {
				return fmt.Errorf("company %s: %w", c.Name, err)
			}
			counts.Companies++
		}
		for _, c := range fx.CostCenters {
			if _, err := q.Exec(ctx, sqlinline.QUpsertCostCenter, c.Name, c.Company, c.Abbreviation, c.IsGroup); err != nil {
				return fmt.Errorf("cost center %s: %w", c.Name, err)
			}
			counts.CostCenters++
		}
		for _, fc := range fx.FundClasses {
			title := fc.Title
			if title == "" {
				title = fc.Name
			}
			if _, err := q.Exec(ctx, sqlinline.QUpsertFundClass, fc.Name, title); err != nil {
				return fmt.Errorf("fund class %s: %w", fc.Name, err)
			}
			counts.FundClasses++
			for _, d := range fc.Defaults {
				if _, err := q.Exec(ctx, sqlinline.QUpsertFundClassDefaults, fc.Name, d.Company,
					d.EquityAccount, d.ReceivableAccount, d.CostCenter, d.ServiceArea, d.SubserviceArea, d.Product); err != nil {
					return fmt.Errorf("fund class %s defaults for %s: %w", fc.Name, d.Company, err)
				}
				counts.Defaults++
			}
			n, err := replaceDeductions(ctx, q, fc)
			if err != nil {
				return err
			}
			counts.Deductions += n
		}
		for _, r := range fx.ExchangeRates {
			if _, err := q.Exec(ctx, sqlinline.QUpsertExchangeRate,
				strings.ToUpper(r.From), strings.ToUpper(r.To), r.Date, r.Rate); err != nil {
				return fmt.Errorf("exchange rate %s/%s: %w", r.From, r.To, err)
			}
			counts.ExchangeRates++
		}
		return nil
	})
	return counts, err
}

func replaceDeductions(ctx context.Context, q infra.SQLExecutor, fc FundClassFixture) (int, error) {
	cleared := map[string]bool{}
	idx := map[string]int{}
	for _, d := range fc.Deductions {
		if !cleared[d.Company] {
			if _, err := q.Exec(ctx, sqlinline.QDeleteDeductionRules, fc.Name, d.Company); err != nil {
				return 0, fmt.Errorf("clear deductions of %s: %w", fc.Name, err)
			}
			cleared[d.Company] = true
		}
		idx[d.Company]++
		if _, err := q.Exec(ctx, sqlinline.QInsertDeductionRule, fc.Name, d.Company, d.Account,
			d.Percentage, d.MinPercent, d.MaxPercent, d.CostCenter, d.Project, idx[d.Company]); err != nil {
			return 0, fmt.Errorf("deduction %s of %s: %w", d.Account, fc.Name, err)
		}
	}
	return len(fc.Deductions), nil
}
