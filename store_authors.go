package site

import (
	"context"
	"database/sql"
)

const authorColumns = `id, name, bio, photo_url, links, created_at, updated_at`

type authorRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Bio       sql.NullString `db:"bio"`
	PhotoURL  sql.NullString `db:"photo_url"`
	Links     Links          `db:"links"`
	CreatedAt dbTime         `db:"created_at"`
	UpdatedAt dbTime         `db:"updated_at"`
}

func (r authorRow) author() Author {
	return Author{
		ID:        r.ID,
		Name:      r.Name,
		Bio:       r.Bio.String,
		PhotoURL:  r.PhotoURL.String,
		Links:     r.Links,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// ListAuthors returns every author, newest first.
func (s *Store) ListAuthors(ctx context.Context) ([]Author, error) {
	var rows []authorRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+authorColumns+` FROM authors ORDER BY created_at DESC, name`); err != nil {
		return nil, err
	}
	authors := make([]Author, 0, len(rows))
	for _, r := range rows {
		authors = append(authors, r.author())
	}
	return authors, nil
}

// GetAuthor returns an author by ID.
func (s *Store) GetAuthor(ctx context.Context, id string) (Author, error) {
	var r authorRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+authorColumns+` FROM authors WHERE id = ?`), id); err != nil {
		return Author{}, mapReadErr(err)
	}
	return r.author(), nil
}

// SaveAuthor inserts a when its ID is empty and updates it otherwise.
// ID and timestamps are written back to a.
func (s *Store) SaveAuthor(ctx context.Context, a *Author) error {
	now := s.now().UTC()
	if a.ID == "" {
		a.ID = newID()
		a.CreatedAt, a.UpdatedAt = now, now
		err := execWrite(ctx, s.db, false,
			s.q(`INSERT INTO authors (id, name, bio, photo_url, links, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			a.ID, a.Name, nullable(a.Bio), nullable(a.PhotoURL), a.Links, now, now)
		if err != nil {
			a.ID = ""
		}
		return err
	}
	a.UpdatedAt = now
	return execWrite(ctx, s.db, true,
		s.q(`UPDATE authors SET name = ?, bio = ?, photo_url = ?, links = ?, updated_at = ? WHERE id = ?`),
		a.Name, nullable(a.Bio), nullable(a.PhotoURL), a.Links, now, a.ID)
}

// DeleteAuthor removes an author. Their posts remain, without an author.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM authors WHERE id = ?`), id)
}
