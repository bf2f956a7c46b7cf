package site

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
)

const postColumns = `p.id, p.slug, p.title_pt, p.title_en, p.content_pt, p.content_en, p.author_id, p.published, p.published_at, p.created_at, p.updated_at`

type postRow struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`
	TitlePT     string         `db:"title_pt"`
	TitleEN     sql.NullString `db:"title_en"`
	ContentPT   sql.NullString `db:"content_pt"`
	ContentEN   sql.NullString `db:"content_en"`
	AuthorID    sql.NullString `db:"author_id"`
	Published   bool           `db:"published"`
	PublishedAt dbTime         `db:"published_at"`
	CreatedAt   dbTime         `db:"created_at"`
	UpdatedAt   dbTime         `db:"updated_at"`
}

func (r postRow) post() BlogPost {
	return BlogPost{
		ID:          r.ID,
		Slug:        r.Slug,
		TitlePT:     r.TitlePT,
		TitleEN:     r.TitleEN.String,
		ContentPT:   r.ContentPT.String,
		ContentEN:   r.ContentEN.String,
		AuthorID:    r.AuthorID.String,
		Published:   r.Published,
		PublishedAt: r.PublishedAt.ptr(),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

// PostFilter narrows ListPosts.
type PostFilter struct {
	PublishedOnly bool
	CategorySlug  string
	Limit         int
}

// ListPosts returns posts ordered by publication date descending, drafts last,
// with author and categories resolved.
func (s *Store) ListPosts(ctx context.Context, f PostFilter) ([]BlogPost, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "p.published = ?")
		args = append(args, true)
	}
	if f.CategorySlug != "" {
		where = append(where, `EXISTS (SELECT 1 FROM blog_posts_categories pc JOIN categories c ON c.id = pc.category_id WHERE pc.post_id = p.id AND c.slug = ?)`)
		args = append(args, f.CategorySlug)
	}
	query := `SELECT ` + postColumns + ` FROM blog_posts p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY CASE WHEN p.published_at IS NULL THEN 1 ELSE 0 END, p.published_at DESC, p.created_at DESC`
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, err
	}
	posts := make([]BlogPost, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.post())
	}
	if err := s.resolvePosts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostBySlug returns a single published post by slug.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	return s.getPost(ctx, `p.slug = ? AND p.published = ?`, slug, true)
}

// GetPost returns a post by ID regardless of published status (for admin).
func (s *Store) GetPost(ctx context.Context, id string) (BlogPost, error) {
	return s.getPost(ctx, `p.id = ?`, id)
}

func (s *Store) getPost(ctx context.Context, cond string, args ...any) (BlogPost, error) {
	var r postRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+postColumns+` FROM blog_posts p WHERE `+cond), args...); err != nil {
		return BlogPost{}, mapReadErr(err)
	}
	posts := []BlogPost{r.post()}
	if err := s.resolvePosts(ctx, posts); err != nil {
		return BlogPost{}, err
	}
	return posts[0], nil
}

// resolvePosts fills Author and Categories in place.
func (s *Store) resolvePosts(ctx context.Context, posts []BlogPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seenAuthor := make(map[string]bool)
	for _, p := range posts {
		ids = append(ids, p.ID)
		if p.AuthorID != "" && !seenAuthor[p.AuthorID] {
			seenAuthor[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors := make(map[string]Author, len(authorIDs))
	if len(authorIDs) > 0 {
		query, args, err := sqlx.In(`SELECT `+authorColumns+` FROM authors WHERE id IN (?)`, authorIDs)
		if err != nil {
			return err
		}
		var rows []authorRow
		if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
			return err
		}
		for _, r := range rows {
			authors[r.ID] = r.author()
		}
	}

	query, args, err := sqlx.In(`SELECT pc.post_id, `+categoryColumns+` FROM blog_posts_categories pc JOIN categories c ON c.id = pc.category_id WHERE pc.post_id IN (?) ORDER BY c.title_pt`, ids)
	if err != nil {
		return err
	}
	var catRows []struct {
		PostID string `db:"post_id"`
		categoryRow
	}
	if err := s.db.SelectContext(ctx, &catRows, s.q(query), args...); err != nil {
		return err
	}
	cats := make(map[string][]Category)
	for _, r := range catRows {
		cats[r.PostID] = append(cats[r.PostID], r.category())
	}

	for i := range posts {
		if a, ok := authors[posts[i].AuthorID]; ok {
			a := a
			posts[i].Author = &a
		}
		posts[i].Categories = cats[posts[i].ID]
	}
	return nil
}

// SavePost upserts p and replaces its category associations in one
// transaction. Publishing without a date stamps the current time;
// unpublishing clears the date.
func (s *Store) SavePost(ctx context.Context, p *BlogPost, categoryIDs []string) error {
	now := s.now().UTC()
	if !p.Published {
		p.PublishedAt = nil
	} else if p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	created := p.ID == ""
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if created {
			p.ID = newID()
			p.CreatedAt = now
			p.UpdatedAt = now
			if err := execWrite(ctx, tx, false,
				tx.Rebind(`INSERT INTO blog_posts (id, slug, title_pt, title_en, content_pt, content_en, author_id, published, published_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				p.ID, p.Slug, p.TitlePT, nullable(p.TitleEN), nullable(p.ContentPT), nullable(p.ContentEN), nullable(p.AuthorID),
				p.Published, nullableTime(p.PublishedAt), now, now); err != nil {
				return err
			}
		} else {
			p.UpdatedAt = now
			if err := execWrite(ctx, tx, true,
				tx.Rebind(`UPDATE blog_posts SET slug = ?, title_pt = ?, title_en = ?, content_pt = ?, content_en = ?, author_id = ?, published = ?, published_at = ?, updated_at = ? WHERE id = ?`),
				p.Slug, p.TitlePT, nullable(p.TitleEN), nullable(p.ContentPT), nullable(p.ContentEN), nullable(p.AuthorID),
				p.Published, nullableTime(p.PublishedAt), now, p.ID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM blog_posts_categories WHERE post_id = ?`), p.ID); err != nil {
			return err
		}
		seen := make(map[string]bool, len(categoryIDs))
		for _, cid := range categoryIDs {
			if cid == "" || seen[cid] {
				continue
			}
			seen[cid] = true
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO blog_posts_categories (post_id, category_id) VALUES (?, ?)`), p.ID, cid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && created {
		p.ID = ""
	}
	return err
}

// DeletePost removes a post with its category associations and comments.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM blog_posts WHERE id = ?`), id)
}
