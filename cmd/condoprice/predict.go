package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/randytsao24/condoprice/internal/estimate"
	"github.com/randytsao24/condoprice/internal/features"
	"github.com/randytsao24/condoprice/internal/model"
)

type predictOptions struct {
	input      features.FormInput
	amenities  []string
	showRecord bool
	asJSON     bool
}

func newPredictCmd() *cobra.Command {
	opts := &predictOptions{input: features.DefaultFormInput()}
	var defaultAmenities []string
	for _, a := range opts.input.Amenities.Flags() {
		if a.On {
			defaultAmenities = append(defaultAmenities, a.Name)
		}
	}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate a price from the command line",
		Long: `Estimate a condominium price without starting the server. Flags mirror
the web form and default to its initial values. Repeat --amenity for each
facility the project has; passing any --amenity replaces the default set.`,
		Example: `  condoprice predict --district Sathon --floors 40 --units 300
  condoprice predict --amenity Pool --amenity Gym --show-record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.input.NbrFloors, "floors", opts.input.NbrFloors, "number of floors")
	f.IntVar(&opts.input.YearBuilt, "year", opts.input.YearBuilt, "year built")
	f.Float64Var(&opts.input.DistNearestStation, "distance", opts.input.DistNearestStation, "distance to the nearest station in km")
	f.IntVar(&opts.input.Units, "units", opts.input.Units, "total units in the project")
	f.StringVar(&opts.input.District, "district", opts.input.District, "district name")
	f.Float64Var(&opts.input.PolicyRate, "policy-rate", opts.input.PolicyRate, "policy interest rate in percent")
	f.Float64Var(&opts.input.UnemploymentCountK, "unemployment", opts.input.UnemploymentCountK, "unemployed persons in thousands")
	f.StringSliceVar(&opts.amenities, "amenity", defaultAmenities, "amenity the project has (repeatable)")
	f.BoolVar(&opts.showRecord, "show-record", false, "print the feature record sent to the model")
	f.BoolVar(&opts.asJSON, "json", false, "print the estimate as JSON")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	in := opts.input
	in.Amenities = features.Amenities{}
	for _, name := range opts.amenities {
		if in.Amenities, err = in.Amenities.With(name, true); err != nil {
			return err
		}
	}

	pipeline, err := model.Load(cfg.ModelPath, features.V4())
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, err := estimate.NewService(pipeline, logger)
	if err != nil {
		return err
	}

	est, err := svc.Estimate(in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	}

	price := est.Formatted
	if isTerminal(out) {
		price = "\x1b[1;32m" + price + "\x1b[0m"
	}
	fmt.Fprintf(out, "Estimated price: %s\n", price)

	if opts.showRecord {
		fmt.Fprintln(out)
		writeRecord(out, est.Record)
	}
	return nil
}

func writeRecord(out io.Writer, rec features.Record) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tVALUE")
	for i, name := range rec.Names() {
		fmt.Fprintf(tw, "%s\t%s\n", name, rec.At(i))
	}
	tw.Flush()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
