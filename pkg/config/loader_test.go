package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurahabits/aura/pkg/config"
)

func TestLoad(t *testing.T) {
	type serverConfig struct {
		Addr            string        `env:"TEST_SERVER_ADDR" envDefault:":8080"`
		ShutdownTimeout time.Duration `env:"TEST_SHUTDOWN_TIMEOUT" envDefault:"10s"`
		Secret          string        `env:"TEST_REQUIRED_SECRET,required"`
	}

	t.Run("parses values and defaults", func(t *testing.T) {
		t.Setenv("TEST_SERVER_ADDR", ":9000")
		t.Setenv("TEST_REQUIRED_SECRET", "s3cret")

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, ":9000", cfg.Addr)
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, "s3cret", cfg.Secret)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		type strictConfig struct {
			Secret string `env:"TEST_NEVER_SET_SECRET,required"`
		}

		var cfg strictConfig
		err := config.Load(&cfg)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Load[struct{}](nil), config.ErrNilPointer)
	})
}
