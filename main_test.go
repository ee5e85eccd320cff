package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occupancy-optimizer/config"
)

func TestBindFlagsUsesLoadedConfig(t *testing.T) {
	cfg = config.FromEnv()
	cfg.Source = "postgres"
	cfg.Schedule = "*/5 * * * *"
	bindFlags()

	assert.Equal(t, "postgres", rootCmd.PersistentFlags().Lookup("source").DefValue)
	assert.Equal(t, "*/5 * * * *", scheduleCmd.Flags().Lookup("cron").DefValue)

	require.NoError(t, rootCmd.PersistentFlags().Set("region", "QLD"))
	assert.Equal(t, "QLD", cfg.RegionCode)
}
