package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/model"
)

func newModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and convert model artifacts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info PATH",
			Short: "Load an artifact and print its metadata",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := model.ReadArtifact(args[0])
				if err != nil {
					return err
				}
				p, err := model.Build(a)
				if err != nil {
					return err
				}
				schemaErr := p.CheckSchema(features.V4())

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "name:      %s\n", p.Name())
				fmt.Fprintf(out, "version:   %s\n", p.Version())
				fmt.Fprintf(out, "schema:    %s\n", p.SchemaVersion())
				fmt.Fprintf(out, "columns:   %d\n", len(p.Columns()))
				fmt.Fprintf(out, "regressor: %s\n", a.Regressor.Type)
				if schemaErr != nil {
					fmt.Fprintf(out, "compatible: no (%v)\n", schemaErr)
				} else {
					fmt.Fprintln(out, "compatible: yes")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "convert SRC DST",
			Short: "Convert an artifact between .json, .yaml and .pb",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := model.ReadArtifact(args[0])
				if err != nil {
					return err
				}
				if _, err := model.Build(a); err != nil {
					return err
				}
				if err := model.WriteArtifact(args[1], a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
				return nil
			},
		},
	)
	return cmd
}
