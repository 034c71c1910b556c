// Package config provides configuration management for ynab-exchange.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section; nested keys map to upper snake case variables (ynab.token ->
// YNAB_TOKEN, reconcile.lookback_days -> RECONCILE_LOOKBACK_DAYS).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and timeouts
//   - Database: state database driver and connection
//   - Storage: S3/MinIO credentials and bucket
//   - Log: level and format
//   - YNAB: API root and personal access token
//   - Rates: exchange rate provider and cache TTL
//   - Events: Kafka brokers and topic
//   - Reconcile: markers, rounding, policy and scheduling
//
// The budgets themselves live in a YAML file read by LoadBudgets:
//
//	budgets:
//	  - id: 6f1c...
//	    name: Household
//	    base_currency: CAD
//	    flag: "🇺🇸"
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	budgets, err := config.LoadBudgets(cfg.Reconcile.BudgetsFile)
package config
