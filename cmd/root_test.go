package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"info", "stats", "transform"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "thermal-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestStatsCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"unit", "percentiles", "format", "output"} {
		flag := statsCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "stats should have --%s flag", flagName)
	}
	assert.Equal(t, "table", statsCmd.Flags().Lookup("format").DefValue)
}

func TestTransformCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"min-temp", "max-temp", "unit", "format", "output"} {
		flag := transformCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "transform should have --%s flag", flagName)
	}
}

func TestInfoCommand_Flags(t *testing.T) {
	require.NotNil(t, infoCmd.Flags().Lookup("json"), "info should have --json flag")
}
