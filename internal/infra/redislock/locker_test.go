package redislock_test

import (
	"testing"

	"campbook/internal/infra/redislock"
	"campbook/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestNewClientDisabled(t *testing.T) {
	assert.Nil(t, redislock.NewClient(config.RedisConfig{}))
	// nothing listens on port 1
	assert.Nil(t, redislock.NewClient(config.RedisConfig{Addr: "127.0.0.1:1"}))
}
