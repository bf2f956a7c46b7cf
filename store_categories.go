package site

import (
	"context"
	"database/sql"
)

const categoryColumns = `c.id, c.slug, c.title_pt, c.title_en, c.description_pt, c.description_en, c.created_at, c.updated_at`

type categoryRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	TitlePT       string         `db:"title_pt"`
	TitleEN       sql.NullString `db:"title_en"`
	DescriptionPT sql.NullString `db:"description_pt"`
	DescriptionEN sql.NullString `db:"description_en"`
	CreatedAt     dbTime         `db:"created_at"`
	UpdatedAt     dbTime         `db:"updated_at"`
}

func (r categoryRow) category() Category {
	return Category{
		ID:            r.ID,
		Slug:          r.Slug,
		TitlePT:       r.TitlePT,
		TitleEN:       r.TitleEN.String,
		DescriptionPT: r.DescriptionPT.String,
		DescriptionEN: r.DescriptionEN.String,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

// ListCategories returns every category, newest first.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+categoryColumns+` FROM categories c ORDER BY c.created_at DESC, c.slug`); err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.category())
	}
	return out, nil
}

// GetCategory returns a category by ID.
func (s *Store) GetCategory(ctx context.Context, id string) (Category, error) {
	var r categoryRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+categoryColumns+` FROM categories c WHERE c.id = ?`), id); err != nil {
		return Category{}, mapReadErr(err)
	}
	return r.category(), nil
}

// GetCategoryBySlug returns a category by slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (Category, error) {
	var r categoryRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+categoryColumns+` FROM categories c WHERE c.slug = ?`), slug); err != nil {
		return Category{}, mapReadErr(err)
	}
	return r.category(), nil
}

// SaveCategory inserts c when its ID is empty and updates it otherwise.
func (s *Store) SaveCategory(ctx context.Context, c *Category) error {
	now := s.now().UTC()
	if c.ID == "" {
		c.ID = newID()
		c.CreatedAt, c.UpdatedAt = now, now
		err := execWrite(ctx, s.db, false,
			s.q(`INSERT INTO categories (id, slug, title_pt, title_en, description_pt, description_en, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			c.ID, c.Slug, c.TitlePT, nullable(c.TitleEN), nullable(c.DescriptionPT), nullable(c.DescriptionEN), now, now)
		if err != nil {
			c.ID = ""
		}
		return err
	}
	c.UpdatedAt = now
	return execWrite(ctx, s.db, true,
		s.q(`UPDATE categories SET slug = ?, title_pt = ?, title_en = ?, description_pt = ?, description_en = ?, updated_at = ? WHERE id = ?`),
		c.Slug, c.TitlePT, nullable(c.TitleEN), nullable(c.DescriptionPT), nullable(c.DescriptionEN), now, c.ID)
}

// DeleteCategory removes a category and its post associations.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM categories WHERE id = ?`), id)
}
