package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache", Port: 6380, DB: 2, Timeout: 250 * time.Millisecond})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, config.ServiceName, opts.ClientName)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.DialTimeout)

	defaults := options(config.RedisConfig{Host: "localhost", Port: 6379})
	assert.Zero(t, defaults.ReadTimeout)
}
