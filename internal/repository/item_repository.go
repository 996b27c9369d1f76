package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmcdole/shelf/internal/domain"
)

const itemColumns = `id, title, media_type, status, rating, notes, author, first_publish_year, openlibrary_key, cover_id`

// ItemRepository implements domain.ItemRepository on SQLite.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository wraps an open, migrated database.
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

var _ domain.ItemRepository = (*ItemRepository)(nil)

// Add inserts a new item and returns its id.
func (r *ItemRepository) Add(ctx context.Context, item domain.Item) (domain.ItemID, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO items (title, media_type, status, rating, notes, author, first_publish_year, openlibrary_key, cover_id)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title,
		string(item.MediaType),
		string(item.Status),
		nullableInt(item.Rating),
		item.Notes,
		item.Author,
		nullableInt(item.FirstPublishYear),
		nullableString(item.OpenLibraryKey),
		nullableInt(int(item.CoverID)),
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	return domain.ItemID(id), nil
}

// Get fetches one item. A missing id returns domain.ErrItemNotFound.
func (r *ItemRepository) Get(ctx context.Context, id domain.ItemID) (*domain.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, int64(id))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns every item, newest first.
func (r *ItemRepository) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update overwrites every column of an existing item.
func (r *ItemRepository) Update(ctx context.Context, item domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE items
         SET title = ?, media_type = ?, status = ?, rating = ?, notes = ?,
             author = ?, first_publish_year = ?, openlibrary_key = ?, cover_id = ?
         WHERE id = ?`,
		item.Title,
		string(item.MediaType),
		string(item.Status),
		nullableInt(item.Rating),
		item.Notes,
		item.Author,
		nullableInt(item.FirstPublishYear),
		nullableString(item.OpenLibraryKey),
		nullableInt(int(item.CoverID)),
		int64(item.ID),
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireAffected(res, item.ID)
}

// Delete removes an item.
func (r *ItemRepository) Delete(ctx context.Context, id domain.ItemID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(res, id)
}

// Count returns the number of stored items.
func (r *ItemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func requireAffected(res sql.Result, id domain.ItemID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", domain.ErrItemNotFound, id)
	}
	return nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.Item, error) {
	var (
		id        int64
		title     string
		mediaType string
		status    string
		rating    sql.NullInt64
		notes     string
		author    string
		year      sql.NullInt64
		olKey     sql.NullString
		coverID   sql.NullInt64
	)
	if err := scanner.Scan(&id, &title, &mediaType, &status, &rating, &notes, &author, &year, &olKey, &coverID); err != nil {
		return nil, err
	}
	return &domain.Item{
		ID:               domain.ItemID(id),
		Title:            title,
		MediaType:        domain.MediaType(mediaType),
		Status:           domain.ItemStatus(status),
		Rating:           int(rating.Int64),
		Notes:            notes,
		Author:           author,
		FirstPublishYear: int(year.Int64),
		OpenLibraryKey:   olKey.String,
		CoverID:          domain.CoverID(coverID.Int64),
	}, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}
