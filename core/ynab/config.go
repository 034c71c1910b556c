package ynab

// Config holds configuration for the YNAB API client.
type Config struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string `mapstructure:"base_url" default:"https://api.ynab.com/v1"`
	// Token is the personal access token sent as a Bearer credential.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
