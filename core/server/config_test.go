package server_test

import (
	"testing"
	"time"

	"ynab-exchange/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Durations(t *testing.T) {
	tests := []struct {
		name         string
		cfg          server.Config
		wantRead     time.Duration
		wantShutdown time.Duration
	}{
		{"Configured", server.Config{ReadTimeoutSeconds: 5, ShutdownTimeoutSeconds: 120}, 5 * time.Second, 2 * time.Minute},
		{"Zero falls back", server.Config{}, 30 * time.Second, time.Minute},
		{"Negative falls back", server.Config{ReadTimeoutSeconds: -1, ShutdownTimeoutSeconds: -1}, 30 * time.Second, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, tt.cfg.ReadTimeout())
			assert.Equal(t, tt.wantShutdown, tt.cfg.ShutdownTimeout())
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", server.Config{Port: "8080"}.Addr())
}
