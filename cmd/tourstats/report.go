package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tourstats/internal/app/dashboard"
	"tourstats/internal/models"
	"tourstats/internal/store"
)

type reportOptions struct {
	yearMin     int
	yearMax     int
	capacityMin int
	capacityMax int
	tours       []string
	countries   []string
	song        string
	asJSON      bool
}

type report struct {
	Home      dashboard.HomeView       `json:"home"`
	Positions *dashboard.SongPositions `json:"positions,omitempty"`
}

func reportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard statistics for a filter selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			source, closeSource, err := datasetSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeSource()

			dataStore := store.New(source)
			if err := dataStore.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			return runReport(cmd.Context(), cmd.OutOrStdout(), dashboard.New(dataStore), opts, cmd.Flags().Changed)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.yearMin, "year-min", 0, "First year to include (default: dataset minimum)")
	flags.IntVar(&opts.yearMax, "year-max", 0, "Last year to include (default: dataset maximum)")
	flags.IntVar(&opts.capacityMin, "capacity-min", 0, "Smallest venue capacity to include")
	flags.IntVar(&opts.capacityMax, "capacity-max", 0, "Largest venue capacity to include")
	flags.StringArrayVar(&opts.tours, "tour", nil, "Tour name to include (repeatable)")
	flags.StringArrayVar(&opts.countries, "country", nil, "Country to include (repeatable)")
	flags.StringVar(&opts.song, "song", "", "Also print the setlist position distribution of this song")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")

	return cmd
}

// runReport overrides the default criteria with every flag the user changed.
func runReport(ctx context.Context, w io.Writer, svc dashboard.Service, opts reportOptions, changed func(flag string) bool) error {
	criteria, err := svc.DefaultCriteria(ctx)
	if err != nil {
		return err
	}

	if changed("year-min") {
		criteria.Years.Min = opts.yearMin
	}
	if changed("year-max") {
		criteria.Years.Max = opts.yearMax
	}
	if changed("capacity-min") {
		criteria.Capacity.Min = opts.capacityMin
	}
	if changed("capacity-max") {
		criteria.Capacity.Max = opts.capacityMax
	}
	criteria.Tours = opts.tours
	criteria.Countries = opts.countries

	var out report
	out.Home, err = svc.Home(ctx, criteria)
	if err != nil {
		return err
	}

	if song := strings.TrimSpace(opts.song); song != "" {
		positions, err := svc.SongPositions(ctx, song)
		if err != nil {
			return err
		}
		out.Positions = &positions
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printReport(w, out)
}

func printReport(w io.Writer, r report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	c := r.Home.Criteria
	fmt.Fprintf(tw, "Years %d-%d, capacity %d-%d, %d matching dates\n",
		c.Years.Min, c.Years.Max, c.Capacity.Min, c.Capacity.Max, r.Home.Matched)

	printCounts(tw, "Top songs", r.Home.TopSongs)
	printCounts(tw, "Top cities", r.Home.TopCities)

	if p := r.Positions; p != nil {
		fmt.Fprintf(tw, "\nSetlist position of %q (%d performances)\n", p.Song, p.Occurrences)
		fmt.Fprintln(tw, "BUCKET\tPERCENT")
		for _, b := range p.Buckets {
			fmt.Fprintf(tw, "%d\t%.2f\n", b.Position, b.Percentage)
		}
	}

	return tw.Flush()
}

func printCounts(w io.Writer, title string, entries []models.CountEntry) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(entries) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	fmt.Fprintln(w, "#\tNAME\tCOUNT")
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, e.Label, e.Count)
	}
}
