package postgres

import (
	"context"
	"errors"
	"fmt"

	"key-transactions-service/internal/entities"

	"github.com/jackc/pgx/v5"
)

const organizationBySlugQuery = `SELECT id, slug, name, features FROM organizations WHERE slug=$1`

// OrganizationBySlug resolves the tenant with its feature flags.
func (p *Postgres) OrganizationBySlug(ctx context.Context, slug string) (*entities.Organization, error) {
	var org entities.Organization
	err := p.db.QueryRow(ctx, organizationBySlugQuery, slug).
		Scan(&org.ID, &org.Slug, &org.Name, &org.Features)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &org, nil
}
