// Package rates fetches foreign exchange rates for the single currency pair the
// reconciler supports (CAD <-> USD).
//
// # Client
//
// Client queries the open.er-api.com "latest" endpoint and returns the rate
// converting one unit of the source currency into its counter currency, decoded
// as an exact decimal.
//
// # Cache
//
// Cache wraps any Fetcher with a TTL so a pass over several accounts performs a
// single remote call per currency. Concurrent misses for the same currency are
// collapsed with singleflight.
//
// # Usage
//
//	source := rates.NewCache(rates.NewClient(cfg.Rates), time.Hour)
//	rate, err := source.Rate(ctx, "USD") // USD -> CAD
package rates
