package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements Repository on the shared sitepress database.
// The editor and CRUD services own the schema; the pipeline creates it only
// so fresh deployments and tests work against an empty file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (and if necessary initializes) the database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return repo, nil
}

func (r *SQLiteRepository) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS websites (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		subdomain TEXT NOT NULL DEFAULT '',
		custom_css TEXT NOT NULL DEFAULT '',
		custom_js TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'draft',
		published_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS pages (
		id TEXT PRIMARY KEY,
		website_id TEXT NOT NULL,
		slug TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		components BLOB,
		UNIQUE(website_id, slug)
	);
	CREATE TABLE IF NOT EXISTS domains (
		domain TEXT PRIMARY KEY,
		website_id TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_pages_website ON pages(website_id);
	CREATE INDEX IF NOT EXISTS idx_domains_website ON domains(website_id);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) GetWebsite(ctx context.Context, id string) (*Website, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, subdomain, custom_css, custom_js,
		       status, published_at, created_at, updated_at
		FROM websites WHERE id = ?`, id)
	return scanWebsite(row)
}

func (r *SQLiteRepository) Snapshot(ctx context.Context, websiteID string) (*Snapshot, error) {
	w, err := r.GetWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, website_id, slug, title, meta_description, components
		FROM pages WHERE website_id = ? ORDER BY slug`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var components []byte
		if err := rows.Scan(&p.ID, &p.WebsiteID, &p.Slug, &p.Title, &p.MetaDescription, &components); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		if p.Components, err = DecodeComponents(components); err != nil {
			return nil, fmt.Errorf("page %s: %w", p.Slug, err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	domains, err := r.domainsFor(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Website: *w, Pages: pages, Domains: domains}, nil
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, websiteID string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE websites SET status = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		StatusPublished, at.Unix(), at.Unix(), websiteID)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListRoutes(ctx context.Context) ([]Route, error) {
	var routes []Route

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subdomain FROM websites WHERE status = ? AND subdomain != ''`,
		StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("query subdomain routes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, subdomain string
		if err := rows.Scan(&id, &subdomain); err != nil {
			return nil, fmt.Errorf("scan subdomain route: %w", err)
		}
		routes = append(routes, Route{Key: RouteKeySubdomain(subdomain), WebsiteID: id})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subdomain routes: %w", err)
	}

	domainRows, err := r.db.QueryContext(ctx, `
		SELECT d.domain, d.website_id FROM domains d
		JOIN websites w ON w.id = d.website_id
		WHERE d.verified = 1 AND w.status = ?`, StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("query domain routes: %w", err)
	}
	defer domainRows.Close()
	for domainRows.Next() {
		var domain, id string
		if err := domainRows.Scan(&domain, &id); err != nil {
			return nil, fmt.Errorf("scan domain route: %w", err)
		}
		routes = append(routes, Route{Key: RouteKeyDomain(domain), WebsiteID: id})
	}
	if err := domainRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain routes: %w", err)
	}

	return routes, nil
}

// SaveWebsite inserts or replaces a website with its pages and domain
// bindings. Exposed for seeding and tests; the editor service is the real
// writer in production.
func (r *SQLiteRepository) SaveWebsite(ctx context.Context, w Website, pages []Page, domains []DomainBinding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var publishedAt any
	if w.PublishedAt != nil {
		publishedAt = w.PublishedAt.Unix()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO websites
		(id, owner_id, name, description, subdomain, custom_css, custom_js, status, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.OwnerID, w.Name, w.Description, w.Subdomain, w.CustomCSS, w.CustomJS,
		string(w.Status), publishedAt, w.CreatedAt.Unix(), w.UpdatedAt.Unix()); err != nil {
		return fmt.Errorf("insert website: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE website_id = ?`, w.ID); err != nil {
		return fmt.Errorf("clear pages: %w", err)
	}
	for _, p := range pages {
		components, err := EncodeComponents(p.Components)
		if err != nil {
			return fmt.Errorf("page %s: %w", p.Slug, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (id, website_id, slug, title, meta_description, components)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, w.ID, p.Slug, p.Title, p.MetaDescription, components); err != nil {
			return fmt.Errorf("insert page %s: %w", p.Slug, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM domains WHERE website_id = ?`, w.ID); err != nil {
		return fmt.Errorf("clear domains: %w", err)
	}
	for _, d := range domains {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO domains (domain, website_id, verified) VALUES (?, ?, ?)`,
			d.Domain, w.ID, boolToInt(d.Verified)); err != nil {
			return fmt.Errorf("insert domain %s: %w", d.Domain, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) domainsFor(ctx context.Context, websiteID string) ([]DomainBinding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT domain, website_id, verified FROM domains WHERE website_id = ? ORDER BY domain`,
		websiteID)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()

	var domains []DomainBinding
	for rows.Next() {
		var d DomainBinding
		var verified int
		if err := rows.Scan(&d.Domain, &d.WebsiteID, &verified); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.Verified = verified != 0
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}
	return domains, nil
}

func scanWebsite(row *sql.Row) (*Website, error) {
	var w Website
	var status string
	var publishedAt sql.NullInt64
	var createdAt, updatedAt int64
	err := row.Scan(&w.ID, &w.OwnerID, &w.Name, &w.Description, &w.Subdomain,
		&w.CustomCSS, &w.CustomJS, &status, &publishedAt, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan website: %w", err)
	}
	w.Status = PublishStatus(status)
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0).UTC()
		w.PublishedAt = &t
	}
	w.CreatedAt = time.Unix(createdAt, 0).UTC()
	w.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &w, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
