// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carvel.dev/yamlgraph/pkg/cmd/ui"
	"carvel.dev/yamlgraph/pkg/orderedmap"
	"carvel.dev/yamlgraph/pkg/serialization"
	"carvel.dev/yamlgraph/pkg/yamlevents"
	"carvel.dev/yamlgraph/pkg/yamlevents/yamlv3"
	"github.com/BurntSushi/toml"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"
)

const (
	formatYAML  = "yaml"
	formatJSON  = "json"
	formatJSONC = "jsonc"
	formatTOML  = "toml"
)

type ConvertOptions struct {
	File     string
	From     string
	To       string
	Indent   int
	SortKeys bool
	Debug    bool
}

func NewConvertOptions() *ConvertOptions {
	return &ConvertOptions{}
}

func NewConvertCmd(o *ConvertOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert YAML, JSON(C) or TOML into YAML or JSON",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run(ui.NewTTY(o.Debug), os.Stdin) },
	}
	cmd.Flags().StringVarP(&o.File, "file", "f", stdinPath, "File (ie local path, -)")
	cmd.Flags().StringVar(&o.From, "from", "", "Input format (yaml, jsonc, toml); guessed from the file extension if empty")
	cmd.Flags().StringVar(&o.To, "to", formatYAML, "Output format (yaml, json)")
	cmd.Flags().IntVar(&o.Indent, "indent", 2, "Number of spaces per indentation level")
	cmd.Flags().BoolVar(&o.SortKeys, "sort-keys", false, "Sort mapping keys")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *ConvertOptions) Run(ui ui.UI, stdin io.Reader) error {
	t1 := time.Now()
	logger := ui.Logger()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if o.To != formatYAML && o.To != formatJSON {
		return fmt.Errorf("Expected --to to be one of 'yaml' or 'json', but was '%s'", o.To)
	}

	inputs, err := readInputs([]string{o.File}, stdin)
	if err != nil {
		return err
	}
	in := inputs[0]

	from := o.inputFormat()
	level.Debug(logger).Log("msg", "converting", "file", in.Name, "from", from, "to", o.To)

	settings := serialization.NewSettings()
	settings.PreferredIndent = o.Indent
	settings.EmitTags = false
	settings.SortKeyForMapping = o.SortKeys
	settings.Logger = logger
	if o.To == formatJSON {
		settings.EmitAlias = false
		settings.EmitJSONCompatible = true
	}

	serializer, err := serialization.New(settings)
	if err != nil {
		return err
	}

	docs, err := o.decode(serializer, from, in)
	if err != nil {
		return err
	}

	if o.To == formatJSON && len(docs) != 1 {
		return fmt.Errorf("Expected exactly one document for JSON output, but found %d", len(docs))
	}

	var buf bytes.Buffer

	err = serializer.SerializeAll(&buf, docs, nil)
	if err != nil {
		return err
	}

	ui.Printf("%s", buf.String())
	return nil
}

func (o *ConvertOptions) inputFormat() string {
	if len(o.From) > 0 {
		return o.From
	}
	switch strings.ToLower(filepath.Ext(o.File)) {
	case ".toml":
		return formatTOML
	case ".json", ".jsonc":
		return formatJSONC
	}
	return formatYAML
}

func (o *ConvertOptions) decode(serializer *serialization.Serializer, from string, in input) ([]interface{}, error) {
	switch from {
	case formatYAML:
		return decodeYAML(serializer, in.Data, in.Name)

	case formatJSONC:
		// JSON is a subset of YAML once comments and trailing commas are gone
		return decodeYAML(serializer, jsonc.ToJSON(in.Data), in.Name)

	case formatTOML:
		var value interface{}

		err := toml.Unmarshal(in.Data, &value)
		if err != nil {
			return nil, fmt.Errorf("Unmarshaling TOML '%s': %s", in.Name, err)
		}
		return []interface{}{tomlScalars(orderedmap.Conversion{Object: value}.FromUnorderedMaps())}, nil

	default:
		return nil, fmt.Errorf("Expected --from to be one of 'yaml', 'jsonc' or 'toml', but was '%s'", from)
	}
}

// decodeYAML reads every document of data as generic values.
func decodeYAML(serializer *serialization.Serializer, data []byte, name string) ([]interface{}, error) {
	reader := yamlevents.NewReader(yamlv3.NewParser(data, name))

	_, err := reader.Expect(yamlevents.StreamStart)
	if err != nil {
		return nil, err
	}

	var docs []interface{}

	for !reader.Accept(yamlevents.StreamEnd) {
		doc, err := serializer.DeserializeFrom(reader, nil, nil)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// tomlScalars replaces TOML date and time values with their TOML spelling.
func tomlScalars(value interface{}) interface{} {
	switch typedVal := value.(type) {
	case *orderedmap.Map:
		for _, key := range typedVal.Keys() {
			item, _ := typedVal.Get(key)
			typedVal.Set(key, tomlScalars(item))
		}
		return typedVal

	case []interface{}:
		for i, item := range typedVal {
			typedVal[i] = tomlScalars(item)
		}
		return typedVal

	case time.Time:
		switch typedVal.Location().String() {
		case "datetime-local":
			return typedVal.Format("2006-01-02T15:04:05.999999999")
		case "date-local":
			return typedVal.Format("2006-01-02")
		case "time-local":
			return typedVal.Format("15:04:05.999999999")
		}
		return typedVal.Format(time.RFC3339Nano)

	default:
		return typedVal
	}
}
