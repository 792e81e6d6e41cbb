package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"mira/internal/model"
)

const listingColumns = `
	b.id, b.title, b.description, b.price, b.location,
	COALESCE(c.bedrooms, 0) AS bedrooms,
	COALESCE(c.bathrooms, 0) AS bathrooms,
	COALESCE(c.size_sqft, 0) AS size_sqft,
	COALESCE(c.amenities, '[]'::jsonb) AS amenities,
	COALESCE(NULLIF(i.image_url, ''), $1) AS image_url`

const listingJoins = `
	FROM property_basics b
	LEFT JOIN property_characteristics c ON c.id = b.id
	LEFT JOIN property_images i ON i.id = b.id`

// PostgresRepository reads the catalog from the property_basics,
// property_characteristics and property_images tables
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Name implements Source
func (r *PostgresRepository) Name() string { return "postgres" }

// Load implements Source, returning listings ordered by id
func (r *PostgresRepository) Load(ctx context.Context) ([]model.Listing, error) {
	query := "SELECT " + listingColumns + listingJoins + " ORDER BY b.id"

	var listings []model.Listing
	if err := r.db.SelectContext(ctx, &listings, query, DefaultImageURL); err != nil {
		return nil, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, nil
}
