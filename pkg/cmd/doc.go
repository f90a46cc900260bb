// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to yamlgraph's "commands": instances of cobra.Command
(not to be confused with ./cmd which contains the bootstrapping for the binary).

For a list of commands run:

	$ yamlgraph help
*/
package cmd
