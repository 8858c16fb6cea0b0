package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_ReportsOutOfScope(t *testing.T) {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs([]string{"serve"})

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not implemented")
}

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	rootCmd := NewRootCmd()
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["index"])
	assert.True(t, names["search"])
	assert.True(t, names["serve"])
}
