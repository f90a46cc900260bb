// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"io"
	"os"
	"time"

	"carvel.dev/yamlgraph/pkg/cmd/ui"
	"carvel.dev/yamlgraph/pkg/yamlevents/yamlv3"
	"carvel.dev/yamlgraph/pkg/yamlnode"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

type FmtOptions struct {
	Files  []string
	Indent int
	Debug  bool
}

func NewFmtOptions() *FmtOptions {
	return &FmtOptions{}
}

func NewFmtCmd(o *FmtOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Format YAML documents, keeping anchors and aliases",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run(ui.NewTTY(o.Debug), os.Stdin) },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File (ie local path, -) (can be specified multiple times)")
	cmd.Flags().IntVar(&o.Indent, "indent", 2, "Number of spaces per indentation level")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

// Run writes all documents of all files as one stream.
func (o *FmtOptions) Run(ui ui.UI, stdin io.Reader) error {
	t1 := time.Now()
	logger := ui.Logger()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	inputs, err := readInputs(o.Files, stdin)
	if err != nil {
		return err
	}

	stream := &yamlnode.Stream{}

	for _, in := range inputs {
		fileStream, err := yamlnode.Load(in.Data, in.Name)
		if err != nil {
			return err
		}
		level.Debug(logger).Log("msg", "loaded file", "file", in.Name, "documents", len(fileStream.Documents))

		for _, doc := range fileStream.Documents {
			doc.AssignAnchors()
			stream.Documents = append(stream.Documents, doc)
		}
	}

	var buf bytes.Buffer

	err = stream.Save(yamlv3.NewEmitter(&buf, yamlv3.EmitterOpts{Indent: o.Indent}))
	if err != nil {
		return err
	}

	ui.Printf("%s", buf.String())
	return nil
}
