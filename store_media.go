package site

import "context"

type mediaRow struct {
	Path         string `db:"path"`
	OriginalName string `db:"original_name"`
	ContentType  string `db:"content_type"`
	Size         int64  `db:"size"`
	Width        int    `db:"width"`
	Height       int    `db:"height"`
	CreatedAt    dbTime `db:"created_at"`
}

// SaveMedia records an uploaded object. Re-saving a path replaces its metadata.
func (s *Store) SaveMedia(ctx context.Context, m *Media) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
	}
	return execWrite(ctx, s.db, false,
		s.q(`INSERT INTO media (path, original_name, content_type, size, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (path) DO UPDATE SET original_name = excluded.original_name, content_type = excluded.content_type,
			size = excluded.size, width = excluded.width, height = excluded.height, created_at = excluded.created_at`),
		m.Path, m.OriginalName, m.ContentType, m.Size, m.Width, m.Height, m.CreatedAt.UTC())
}

// ListMedia returns uploaded objects, newest first.
func (s *Store) ListMedia(ctx context.Context) ([]Media, error) {
	var rows []mediaRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT path, original_name, content_type, size, width, height, created_at FROM media ORDER BY created_at DESC, path`); err != nil {
		return nil, err
	}
	out := make([]Media, 0, len(rows))
	for _, r := range rows {
		out = append(out, Media{
			Path:         r.Path,
			OriginalName: r.OriginalName,
			ContentType:  r.ContentType,
			Size:         r.Size,
			Width:        r.Width,
			Height:       r.Height,
			CreatedAt:    r.CreatedAt.Time,
		})
	}
	return out, nil
}

func (s *Store) DeleteMedia(ctx context.Context, path string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM media WHERE path = ?`), path)
}
