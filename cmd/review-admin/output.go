package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/Pesokrava/product_reviews/internal/adminclient"
)

const formatYAML = "yaml"

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// pendingMark flags values that have not been confirmed by the server
func pendingMark(pending bool) string {
	if pending {
		return "*"
	}
	return ""
}

func writeRows(w io.Writer, rows []adminclient.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tRATING\tIMAGES\tSTATUS\tVERIFIED\tNAME")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s%s\t%t%s\t%s\n",
			r.ID, r.ProductID, r.Rating, r.Images,
			r.Status, pendingMark(r.StatusPending),
			r.Verified, pendingMark(r.VerifiedPending),
			r.Name,
		)
	}
	return tw.Flush()
}

type outcomeRow struct {
	ID    string `yaml:"id"`
	Value string `yaml:"value"`
	Error string `yaml:"error,omitempty"`
}

func outcomeView(outcomes []adminclient.Outcome) []outcomeRow {
	out := make([]outcomeRow, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeRow{ID: o.ID.String(), Value: o.Value}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return out
}

func writeSample(w io.Writer, s *adminclient.RandomSample) error {
	if s.Message != "" {
		_, err := fmt.Fprintln(w, s.Message)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tRATING\tIMAGES\tTITLE")
	for _, r := range s.Reviews {
		title := ""
		if r.Title != nil {
			title = *r.Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.ProductID, r.Rating, len(r.Images), title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nreturned %d of %d requested (%d with images, %d without); available %d (%d with images, %d without)\n",
		s.Returned, s.TotalRequested,
		s.SelectedWithImageMedia, s.SelectedWithoutImageMedia,
		s.TotalAvailable, s.TotalWithImageMediaAvailable, s.TotalWithoutImageMediaAvailable,
	)
	return err
}
