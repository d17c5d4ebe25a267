package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configFormat string

var configCommand = &cobra.Command{
	Use:   "config",
	Short: "Print the assembled build configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := assemble()
		if err != nil {
			return err
		}
		return printConfig(cmd.OutOrStdout(), cfg, configFormat)
	},
}

func init() {
	configCommand.Flags().StringVarP(&configFormat, "format", "f", "json", "output format (json or yaml)")
	rootCmd.AddCommand(configCommand)
}

func printConfig(w io.Writer, cfg *buildconfig.Configuration, format string) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return ee.New(err, "encoding configuration")
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case "yaml":
		// Go through JSON so the configuration's JSON encoding stays the
		// single description of its shape.
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return ee.New(err, "decoding configuration")
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return ee.New(err, "encoding configuration as YAML")
		}
		_, err = w.Write(out)
		return err
	}
	return ee.New(nil, "unknown format %q", format)
}
