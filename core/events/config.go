package events

import "strings"

// Config holds configuration for mirror event publishing.
type Config struct {
	// Brokers is a comma separated list of Kafka brokers. Empty disables publishing.
	Brokers string `mapstructure:"brokers" default:""`
	// Topic receives every mirror lifecycle event.
	Topic string `mapstructure:"topic" default:"ynab-exchange.mirrors"`
	// TimeoutSeconds bounds a single write.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}

// BrokerList returns the configured brokers, trimmed, without empties.
func (c Config) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Enabled reports whether any broker is configured.
func (c Config) Enabled() bool {
	return len(c.BrokerList()) > 0
}
