package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() {
		fixturesDir, outputFormat = "", "yaml"
		rootCmd.SetArgs(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFixturesCmd_JSON(t *testing.T) {
	out, err := execute(t, "fixtures", "-o", "json")
	require.NoError(t, err)

	var sets map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &sets))
	assert.Len(t, sets["organizations"], 3)
	assert.Len(t, sets["users"], 5)
}

func TestFixturesCmd_CustomDirYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.yaml"), []byte("- name: Ada\n  age: 36\n"), 0o644))

	out, err := execute(t, "fixtures", "--fixtures", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "users:")
	assert.Contains(t, out, "name: Ada")
	assert.NotContains(t, out, "organizations")
}

func TestFixturesCmd_UnknownFormat(t *testing.T) {
	_, err := execute(t, "fixtures", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	t.Setenv("SETUP_FAILURE_POLICY", "maybe")
	_, err := execute(t, "fixtures")
	assert.ErrorContains(t, err, "invalid configuration")
}
