// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/yamlgraph/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type YamlgraphOptions struct{}

func NewDefaultYamlgraphOptions() *YamlgraphOptions {
	return &YamlgraphOptions{}
}

func NewDefaultYamlgraphCmd() *cobra.Command {
	return NewYamlgraphCmd(NewDefaultYamlgraphOptions())
}

func NewYamlgraphCmd(o *YamlgraphOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "yamlgraph",
		Version: version.Version,
		Short:   "yamlgraph formats and converts YAML object graphs",
		Long: `yamlgraph formats and converts YAML object graphs.

Anchors and aliases survive formatting; shared values are written once.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewFmtCmd(NewFmtOptions()))
	cmd.AddCommand(NewConvertCmd(NewConvertOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
