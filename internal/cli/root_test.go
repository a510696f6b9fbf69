package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan:
// - --version prints the build metadata through the root command
func TestRootCommand_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--version"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)

	// Test: template folds version, commit and build date into one line
	assert.Contains(t, out.String(), "atlas "+Version)
	assert.Contains(t, out.String(), "commit "+GitCommit)
	assert.Contains(t, out.String(), "built "+BuildDate)
}
