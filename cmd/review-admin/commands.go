package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/adminclient"
	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ListCmd prints one page of the admin review listing.
type ListCmd struct {
	Query   string   `short:"q" help:"Full-text search over review content."`
	Status  []string `short:"s" help:"Only reviews with these statuses."`
	Product []string `short:"p" help:"Only reviews of these products."`
	Limit   int      `default:"50" help:"Page size."`
	Offset  int      `help:"Page offset."`
}

func (c *ListCmd) Run(a *app) error {
	statuses := make([]domain.ReviewStatus, 0, len(c.Status))
	for _, raw := range c.Status {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return fmt.Errorf("status %q: %w", raw, err)
		}
		statuses = append(statuses, status)
	}

	page, err := a.client.ListReviews(a.ctx, adminclient.ListParams{
		Query:      c.Query,
		Statuses:   statuses,
		ProductIDs: c.Product,
		Limit:      c.Limit,
		Offset:     c.Offset,
	})
	if err != nil {
		return err
	}

	table := adminclient.NewTable(a.client)
	table.Load(page.Reviews)

	if a.format == formatYAML {
		return writeYAML(a.out, struct {
			Rows   []adminclient.Row `yaml:"reviews"`
			Count  int               `yaml:"count"`
			Limit  int               `yaml:"limit"`
			Offset int               `yaml:"offset"`
		}{table.Rows(), page.Count, page.Limit, page.Offset})
	}
	if err := writeRows(a.out, table.Rows()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "\n%d of %d reviews (offset %d)\n", len(page.Reviews), page.Count, page.Offset)
	return err
}

// CycleStatusCmd moves each review to its next status.
type CycleStatusCmd struct {
	IDs []string `arg:"" name:"id" help:"Review IDs."`
}

func (c *CycleStatusCmd) Run(a *app) error {
	table, ids, err := loadTable(a, c.IDs)
	if err != nil {
		return err
	}

	outcomes, editErr := table.CycleStatusAll(a.ctx, ids)
	if err := writeOutcomes(a, table, outcomes); err != nil {
		return err
	}
	return editErr
}

// ToggleVerifiedCmd flips the verified flag of each review.
type ToggleVerifiedCmd struct {
	IDs []string `arg:"" name:"id" help:"Review IDs."`
}

func (c *ToggleVerifiedCmd) Run(a *app) error {
	table, ids, err := loadTable(a, c.IDs)
	if err != nil {
		return err
	}

	outcomes, editErr := table.ToggleVerifiedAll(a.ctx, ids)
	if err := writeOutcomes(a, table, outcomes); err != nil {
		return err
	}
	return editErr
}

// RefreshStatsCmd recomputes stats for the given products, or for every product with reviews.
type RefreshStatsCmd struct {
	ProductIDs []string `arg:"" optional:"" name:"product-id" help:"Products to refresh. All when omitted."`
}

func (c *RefreshStatsCmd) Run(a *app) error {
	result, err := a.client.RefreshStats(a.ctx, c.ProductIDs)
	if err != nil {
		return err
	}

	if a.format == formatYAML {
		return writeYAML(a.out, result)
	}
	_, err = fmt.Fprintln(a.out, result.Message)
	return err
}

// RandomCmd draws a random sample from the storefront endpoint.
type RandomCmd struct {
	Status     string   `short:"s" default:"approved" help:"Status of the sampled reviews."`
	Product    []string `short:"p" help:"Only reviews of these products."`
	WithImages *int     `name:"with-images" help:"Reviews with images to include."`
	Total      *int     `help:"Total reviews to return."`
}

func (c *RandomCmd) Run(a *app) error {
	status, err := domain.ParseStatus(c.Status)
	if err != nil {
		return fmt.Errorf("status %q: %w", c.Status, err)
	}

	sample, err := a.client.Random(a.ctx, adminclient.RandomParams{
		Status:     status,
		ProductIDs: c.Product,
		WithImages: c.WithImages,
		Total:      c.Total,
	})
	if err != nil {
		return err
	}

	if a.format == formatYAML {
		return writeYAML(a.out, sample)
	}
	return writeSample(a.out, sample)
}

// loadTable fetches each review so the table starts from the server's current values
func loadTable(a *app, raw []string) (*adminclient.Table, []uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	reviews := make([]*domain.Review, 0, len(raw))

	var errs []error
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid review id %q: %w", s, err))
			continue
		}
		review, err := a.client.GetReview(a.ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("review %s: %w", id, err))
			continue
		}
		ids = append(ids, id)
		reviews = append(reviews, review)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, nil, err
	}

	table := adminclient.NewTable(a.client)
	table.Load(reviews)
	return table, ids, nil
}

func writeOutcomes(a *app, table *adminclient.Table, outcomes []adminclient.Outcome) error {
	if a.format == formatYAML {
		return writeYAML(a.out, outcomeView(outcomes))
	}
	return writeRows(a.out, table.Rows())
}
