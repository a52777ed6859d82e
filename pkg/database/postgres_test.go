package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, int32(defaultMaxConns), cfg.maxConns())
	assert.Equal(t, defaultConnLifetime, cfg.connLifetime())
	assert.Equal(t, defaultConnIdleTime, cfg.connIdleTime())
}

func TestConfigExplicitValues(t *testing.T) {
	cfg := &Config{
		MaxConnections:  5,
		MaxConnLifetime: 15 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	}
	assert.Equal(t, int32(5), cfg.maxConns())
	assert.Equal(t, 15*time.Minute, cfg.connLifetime())
	assert.Equal(t, 5*time.Minute, cfg.connIdleTime())
}
