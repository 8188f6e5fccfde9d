package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConfiguration tests the configuration package basic functionality
func TestConfiguration(t *testing.T) {
	t.Run("configuration_struct_exists", func(t *testing.T) {
		require.NotNil(t, &C, "Configuration should not be nil")
		require.NotNil(t, &C.App, "App configuration should exist")
		require.NotNil(t, &C.Database, "Database configuration should exist")
	})

	t.Run("configuration_has_required_fields", func(t *testing.T) {
		config := &C

		require.NotNil(t, config.Database.Psql, "PostgreSQL config should be present")
		require.NotNil(t, config.Database.Mssql, "MSSQL config should be present")
		require.NotNil(t, config.RedisClient, "Redis config should be present")
		require.NotNil(t, config.MediaHost, "MediaHost config should be present")
	})

	t.Run("defaults_applied", func(t *testing.T) {
		require.NotZero(t, C.App.Port, "App port should default when unset")
		require.NotEmpty(t, C.Database.Mssql.Port, "MSSQL port should default when unset")
	})
}
