package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randytsao24/condoprice/internal/features"
)

func newSchemaCmd() *cobra.Command {
	var asJSONSchema bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the feature schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema := features.V4()
			out := cmd.OutOrStdout()

			if asJSONSchema {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schema.JSONSchema())
			}

			fmt.Fprintf(out, "schema %s, %d columns\n\n", schema.Version(), schema.Len())
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCOLUMN\tKIND\tDEFAULT")
			for i, col := range schema.Columns() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, col.Name, col.Kind, col.Default)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSONSchema, "json-schema", false, "print the record JSON Schema instead of a table")
	return cmd
}
