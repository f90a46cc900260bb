// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
)

const stdinPath = "-"

type input struct {
	Name string
	Data []byte
}

// readInputs reads every path in order; "-" reads stdin (at most once).
func readInputs(paths []string, stdin io.Reader) ([]input, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("Expected at least one file (use '-' for stdin)")
	}

	var result []input
	readStdin := false

	for _, path := range paths {
		if path == stdinPath {
			if readStdin {
				return nil, fmt.Errorf("Expected stdin to be given at most once")
			}
			readStdin = true

			data, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("Reading stdin: %s", err)
			}
			result = append(result, input{Name: "stdin.yml", Data: data})
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Reading file '%s': %s", path, err)
		}
		result = append(result, input{Name: path, Data: data})
	}

	return result, nil
}
