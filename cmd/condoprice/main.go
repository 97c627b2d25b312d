// Package main is the entry point for the condoprice server and CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// modelFlag overrides MODEL_PATH when set.
const modelFlag = "model"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "condoprice",
		Short: "Bangkok condominium price estimator",
		Long: `condoprice estimates Bangkok condominium prices from a handful of
project attributes using a pre-trained regression pipeline.

Run "condoprice serve" to start the web form and JSON API, or
"condoprice predict" for a one-off estimate on the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(modelFlag, "", "model artifact path (overrides MODEL_PATH)")

	root.AddCommand(
		newServeCmd(),
		newPredictCmd(),
		newSchemaCmd(),
		newModelCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
