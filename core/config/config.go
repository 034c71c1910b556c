package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"ynab-exchange/core/database"
	"ynab-exchange/core/events"
	"ynab-exchange/core/logger"
	"ynab-exchange/core/rates"
	"ynab-exchange/core/reconcile"
	"ynab-exchange/core/server"
	"ynab-exchange/core/storage"
	"ynab-exchange/core/ynab"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// YNAB holds configuration for the ledger API client.
	YNAB ynab.Config `mapstructure:"ynab"`
	// Rates holds configuration for the exchange rate provider.
	Rates rates.Config `mapstructure:"rates"`
	// Events holds configuration for mirror event publishing.
	Events events.Config `mapstructure:"events"`
	// Reconcile holds configuration for reconciliation passes.
	Reconcile reconcile.Config `mapstructure:"reconcile"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	// We construct the path to .env
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}

// budgetsFile is the layout of the budgets YAML file.
type budgetsFile struct {
	Budgets []reconcile.Budget `yaml:"budgets"`
}

// LoadBudgets reads and validates the budgets file. Budget ids must be unique.
func LoadBudgets(path string) ([]reconcile.Budget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read budgets file: %w", err)
	}

	var file budgetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse budgets file %s: %w", path, err)
	}
	if len(file.Budgets) == 0 {
		return nil, fmt.Errorf("budgets file %s lists no budgets", path)
	}

	seen := make(map[string]struct{}, len(file.Budgets))
	var errs []error
	for _, b := range file.Budgets {
		if err := b.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[b.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate budget %q", reconcile.ErrInvalidBudget, b.ID))
		}
		seen[b.ID] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return file.Budgets, nil
}
