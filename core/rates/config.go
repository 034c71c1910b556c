package rates

// Config holds configuration for the exchange rate provider.
type Config struct {
	// BaseURL is the provider root; the client appends /latest/{currency}.
	BaseURL string `mapstructure:"base_url" default:"https://open.er-api.com/v6"`
	// CacheTTLSeconds is how long a fetched rate is reused. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"3600"`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
