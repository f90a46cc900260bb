// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// binary is built by `go build -o yamlgraph ./cmd/yamlgraph` at the repository root.
const binary = "../../yamlgraph"

func TestFmtFromStdin(t *testing.T) {
	actualOutput := runYamlgraph(t, []string{"fmt", "-f", "-"}, "base: &base\n    replicas: 2\nprod: *base\n")

	require.Equal(t, "base: &base\n  replicas: 2\nprod: *base\n", actualOutput)
}

func TestFmtMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yml")
	second := filepath.Join(dir, "b.yml")
	require.NoError(t, os.WriteFile(first, []byte("a: 1\n---\nb: 2\n"), 0600))
	require.NoError(t, os.WriteFile(second, []byte("- c\n"), 0600))

	actualOutput := runYamlgraph(t, []string{"fmt", "-f", first, "-f", second}, "")

	require.Equal(t, "a: 1\n---\nb: 2\n---\n- c\n", actualOutput)
}

func TestConvertToJSON(t *testing.T) {
	actualOutput := runYamlgraph(t, []string{"convert", "--to", "json"}, "name: web\nports: [80, 443]\n")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(actualOutput), &decoded), actualOutput)
	require.Equal(t, map[string]interface{}{"name": "web", "ports": []interface{}{float64(80), float64(443)}}, decoded)
}

func TestConvertTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 8080\n"), 0600))

	actualOutput := runYamlgraph(t, []string{"convert", "-f", path}, "")

	require.Equal(t, "server:\n  port: 8080\n", actualOutput)
}

func TestErrorsAreReportedOnStderr(t *testing.T) {
	skipWithoutBinary(t)

	command := exec.Command(binary, "fmt", "-f", "-")
	command.Stdin = strings.NewReader("a: 1\na: 2\n")
	stdErr := bytes.NewBufferString("")
	command.Stderr = stdErr

	err := command.Run()
	require.Error(t, err)
	require.Contains(t, stdErr.String(), "yamlgraph: Error: ")
	require.Contains(t, stdErr.String(), "duplicate mapping key 'a'")
}

func TestVersionRequirement(t *testing.T) {
	actualOutput := runYamlgraph(t, []string{"version", "--require-at-least", "0.0.1"}, "")
	require.True(t, strings.HasPrefix(actualOutput, "yamlgraph version "), actualOutput)
}

func skipWithoutBinary(t *testing.T) {
	if _, err := os.Stat(binary); err != nil {
		t.Skipf("yamlgraph binary not built at %s", binary)
	}
}

func runYamlgraph(t *testing.T, args []string, stdin string) string {
	skipWithoutBinary(t)

	command := exec.Command(binary, args...)
	stdError := bytes.NewBufferString("")
	command.Stderr = stdError
	command.Stdin = strings.NewReader(stdin)

	output, err := command.Output()
	require.NoError(t, err, stdError.String())

	return string(output)
}
