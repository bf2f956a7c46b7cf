package site

import (
	"context"
	"database/sql"
)

const commentColumns = `id, post_id, name, email, content, approved, created_at, updated_at`

type commentRow struct {
	ID        string         `db:"id"`
	PostID    string         `db:"post_id"`
	Name      string         `db:"name"`
	Email     sql.NullString `db:"email"`
	Content   string         `db:"content"`
	Approved  bool           `db:"approved"`
	CreatedAt dbTime         `db:"created_at"`
	UpdatedAt dbTime         `db:"updated_at"`
}

func (r commentRow) comment() Comment {
	return Comment{
		ID:        r.ID,
		PostID:    r.PostID,
		Name:      r.Name,
		Email:     r.Email.String,
		Content:   r.Content,
		Approved:  r.Approved,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (s *Store) selectComments(ctx context.Context, query string, args ...any) ([]Comment, error) {
	var rows []commentRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, err
	}
	out := make([]Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.comment())
	}
	return out, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string, approvedOnly bool) ([]Comment, error) {
	if approvedOnly {
		return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = ? AND approved = ? ORDER BY created_at`, postID, true)
	}
	return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at`, postID)
}

// ListPendingComments returns every comment awaiting moderation, oldest first.
func (s *Store) ListPendingComments(ctx context.Context) ([]Comment, error) {
	return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments WHERE approved = ? ORDER BY created_at`, false)
}

// AddComment stores a new comment. Comments always start unapproved.
func (s *Store) AddComment(ctx context.Context, c *Comment) error {
	now := s.now().UTC()
	c.ID = newID()
	c.Approved = false
	c.CreatedAt, c.UpdatedAt = now, now
	err := execWrite(ctx, s.db, false,
		s.q(`INSERT INTO comments (id, post_id, name, email, content, approved, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.PostID, c.Name, nullable(c.Email), c.Content, false, now, now)
	if err != nil {
		c.ID = ""
	}
	return err
}

func (s *Store) ApproveComment(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true,
		s.q(`UPDATE comments SET approved = ?, updated_at = ? WHERE id = ?`), true, s.now().UTC(), id)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM comments WHERE id = ?`), id)
}
