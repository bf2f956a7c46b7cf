package site

import (
	"context"
	"database/sql"
	"fmt"
)

// searchLimit caps each per-table query and the merged result.
const searchLimit = 10

// searchTarget describes one searchable table.
type searchTarget struct {
	kind          string
	table         string
	titlePT       string
	titleEN       string
	bodyPT        string
	bodyEN        string
	publishedAt   string
	publishedOnly bool
}

var searchTargets = map[string]searchTarget{
	ResultBlogPost: {ResultBlogPost, "blog_posts", "title_pt", "title_en", "content_pt", "content_en", "t.published_at", true},
	ResultProject:  {ResultProject, "projects", "name_pt", "name_en", "description_pt", "description_en", "NULL", false},
	ResultDoc:      {ResultDoc, "docs", "title_pt", "title_en", "content_pt", "content_en", "NULL", true},
}

type searchHit struct {
	ID          string          `db:"id"`
	Slug        string          `db:"slug"`
	TitlePT     string          `db:"title_pt"`
	TitleEN     sql.NullString  `db:"title_en"`
	BodyPT      sql.NullString  `db:"body_pt"`
	BodyEN      sql.NullString  `db:"body_en"`
	PublishedAt dbTime          `db:"published_at"`
	Score       sql.NullFloat64 `db:"score"`
}

func (t searchTarget) columns() string {
	return fmt.Sprintf(`t.id, t.slug, t.%s AS title_pt, t.%s AS title_en, t.%s AS body_pt, t.%s AS body_en, %s AS published_at`,
		t.titlePT, t.titleEN, t.bodyPT, t.bodyEN, t.publishedAt)
}

// searchTable runs the ranked full-text query for one kind. q is the raw user
// query; it is only ever bound as a parameter.
func (s *Store) searchTable(ctx context.Context, kind, q string) ([]searchHit, error) {
	t, ok := searchTargets[kind]
	if !ok {
		return nil, fmt.Errorf("search: unknown kind %q", kind)
	}

	var (
		query string
		args  []any
	)
	switch s.dialect {
	case DialectSQLite:
		match := ftsQuery(q)
		if match == "" {
			return nil, nil
		}
		fts := t.table + "_fts"
		query = `SELECT ` + t.columns() + `, -bm25(` + fts + `, 10.0, 10.0, 1.0, 1.0) AS score
			FROM ` + fts + ` JOIN ` + t.table + ` t ON t.seq = ` + fts + `.rowid
			WHERE ` + fts + ` MATCH ?`
		args = append(args, match)
	case DialectPostgres:
		query = `SELECT ` + t.columns() + `, ts_rank_cd(t.search_vector, websearch_to_tsquery('simple', ?)) AS score
			FROM ` + t.table + ` t
			WHERE t.search_vector @@ websearch_to_tsquery('simple', ?)`
		args = append(args, q, q)
	default:
		return nil, fmt.Errorf("search: unsupported dialect %q", s.dialect)
	}
	if t.publishedOnly {
		query += ` AND t.published = ?`
		args = append(args, true)
	}
	query += ` ORDER BY score DESC LIMIT ?`
	args = append(args, searchLimit)

	var hits []searchHit
	if err := s.db.SelectContext(ctx, &hits, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("search %s: %w", t.table, err)
	}
	return hits, nil
}
