package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"ynab-exchange/core/config"
	"ynab-exchange/core/rates"
	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/utils"
	"ynab-exchange/core/ynab"
)

// Prints, per budget, the accounts a pass would touch and the adjustment a
// 100.00 outflow would produce at today's rate. Read-only.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal(err)
	}

	budgets, err := config.LoadBudgets(cfg.Reconcile.BudgetsFile)
	if err != nil {
		log.Fatal(err)
	}

	ledger := ynab.NewClient(cfg.YNAB)
	rateSource := rates.NewClient(cfg.Rates)
	ctx := context.Background()

	output := map[string]any{}
	for _, b := range budgets {
		fmt.Printf("=== Budget %s (%s, flag %s) ===\n", b.ID, b.BaseCurrency, b.Flag)
		entry := map[string]any{"base_currency": b.BaseCurrency}
		output[b.ID] = entry

		accounts, err := ledger.ListAccounts(ctx, b.ID)
		if err != nil {
			fmt.Printf("FAILED to list accounts: %v\n", err)
			entry["error"] = err.Error()
			continue
		}
		fmt.Printf("Accounts: %d\n", len(accounts))

		mirror, err := reconcile.FindMirrorAccount(accounts, cfg.Reconcile.MirrorMarker)
		if err != nil {
			fmt.Printf("Mirror account: %v\n", err)
			entry["error"] = err.Error()
			continue
		}
		fmt.Printf("Mirror account: %s (%s)\n", mirror.Name, mirror.ID)
		entry["mirror_account"] = mirror.Name

		var names []string
		for _, a := range reconcile.EligibleAccounts(accounts, b.Flag, mirror.ID) {
			names = append(names, a.Name)
			fmt.Printf("Eligible: %s\n", a.Name)
		}
		entry["eligible_accounts"] = names

		currency, err := rates.CounterCurrency(b.BaseCurrency)
		if err != nil {
			entry["error"] = err.Error()
			continue
		}
		rate, err := rateSource.Rate(ctx, currency)
		if err != nil {
			fmt.Printf("FAILED to fetch %s rate: %v\n", currency, err)
			entry["error"] = err.Error()
			continue
		}
		entry["rate"] = rate.String()

		sample := ynab.Transaction{ID: "sample", Amount: -100000, Approved: true}
		adj := cfg.Reconcile.Calculator(b.Flag).Compute(sample, rate, b.Flag+" Sample", mirror.ID)
		fmt.Printf("Rate %s->%s: %s, a %s outflow mirrors as %s\n",
			currency, b.BaseCurrency, rate,
			utils.FormatMilliunits(sample.Amount, currency),
			utils.FormatMilliunits(adj.Amount, b.BaseCurrency))
		entry["sample_adjustment"] = adj.Amount
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	os.WriteFile("debug_reconcile.json", data, 0644)

	fmt.Println("\nDebug complete. Check debug_reconcile.json for details.")
}
