package site

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// ErrDocCycle is returned when a doc would become its own ancestor.
var ErrDocCycle = errors.New("doc parent would create a cycle")

const docColumns = `id, slug, title_pt, title_en, content_pt, content_en, parent_id, project_id, position, published, created_at, updated_at`

type docRow struct {
	ID        string         `db:"id"`
	Slug      string         `db:"slug"`
	TitlePT   string         `db:"title_pt"`
	TitleEN   sql.NullString `db:"title_en"`
	ContentPT sql.NullString `db:"content_pt"`
	ContentEN sql.NullString `db:"content_en"`
	ParentID  sql.NullString `db:"parent_id"`
	ProjectID sql.NullString `db:"project_id"`
	Position  int            `db:"position"`
	Published bool           `db:"published"`
	CreatedAt dbTime         `db:"created_at"`
	UpdatedAt dbTime         `db:"updated_at"`
}

func (r docRow) doc() Doc {
	return Doc{
		ID:        r.ID,
		Slug:      r.Slug,
		TitlePT:   r.TitlePT,
		TitleEN:   r.TitleEN.String,
		ContentPT: r.ContentPT.String,
		ContentEN: r.ContentEN.String,
		ParentID:  r.ParentID.String,
		ProjectID: r.ProjectID.String,
		Position:  r.Position,
		Published: r.Published,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

// DocFilter narrows ListDocs.
type DocFilter struct {
	PublishedOnly bool
	ProjectID     string
}

// ListDocs returns docs ordered by position, then title.
func (s *Store) ListDocs(ctx context.Context, f DocFilter) ([]Doc, error) {
	var (
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "published = ?")
		args = append(args, true)
	}
	if f.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	query := `SELECT ` + docColumns + ` FROM docs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY position, title_pt"

	var rows []docRow
	if err := s.db.SelectContext(ctx, &rows, s.q(query), args...); err != nil {
		return nil, err
	}
	out := make([]Doc, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.doc())
	}
	return out, nil
}

// GetDocBySlug returns a published doc by slug.
func (s *Store) GetDocBySlug(ctx context.Context, slug string) (Doc, error) {
	var r docRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+docColumns+` FROM docs WHERE slug = ? AND published = ?`), slug, true); err != nil {
		return Doc{}, mapReadErr(err)
	}
	return r.doc(), nil
}

// GetDoc returns a doc by ID regardless of published status.
func (s *Store) GetDoc(ctx context.Context, id string) (Doc, error) {
	var r docRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+docColumns+` FROM docs WHERE id = ?`), id); err != nil {
		return Doc{}, mapReadErr(err)
	}
	return r.doc(), nil
}

// SaveDoc inserts d when its ID is empty and updates it otherwise.
func (s *Store) SaveDoc(ctx context.Context, d *Doc) error {
	if d.ID != "" && d.ParentID != "" {
		if err := s.checkDocParent(ctx, d.ID, d.ParentID); err != nil {
			return err
		}
	}
	now := s.now().UTC()
	if d.ID == "" {
		d.ID = newID()
		d.CreatedAt, d.UpdatedAt = now, now
		err := execWrite(ctx, s.db, false,
			s.q(`INSERT INTO docs (id, slug, title_pt, title_en, content_pt, content_en, parent_id, project_id, position, published, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			d.ID, d.Slug, d.TitlePT, nullable(d.TitleEN), nullable(d.ContentPT), nullable(d.ContentEN),
			nullable(d.ParentID), nullable(d.ProjectID), d.Position, d.Published, now, now)
		if err != nil {
			d.ID = ""
		}
		return err
	}
	d.UpdatedAt = now
	return execWrite(ctx, s.db, true,
		s.q(`UPDATE docs SET slug = ?, title_pt = ?, title_en = ?, content_pt = ?, content_en = ?, parent_id = ?, project_id = ?, position = ?, published = ?, updated_at = ? WHERE id = ?`),
		d.Slug, d.TitlePT, nullable(d.TitleEN), nullable(d.ContentPT), nullable(d.ContentEN),
		nullable(d.ParentID), nullable(d.ProjectID), d.Position, d.Published, now, d.ID)
}

// checkDocParent walks up from parentID and fails if it reaches id.
func (s *Store) checkDocParent(ctx context.Context, id, parentID string) error {
	seen := map[string]bool{}
	for cur := parentID; cur != ""; {
		if cur == id || seen[cur] {
			return ErrDocCycle
		}
		seen[cur] = true
		var next sql.NullString
		err := s.db.GetContext(ctx, &next, s.q(`SELECT parent_id FROM docs WHERE id = ?`), cur)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		cur = next.String
	}
	return nil
}

// DeleteDoc removes a doc. Its children move to the top level.
func (s *Store) DeleteDoc(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM docs WHERE id = ?`), id)
}

// DocTree nests docs under their parents, keeping the input order among
// siblings. Docs whose parent is not in the list become roots.
func DocTree(docs []Doc) []DocNode {
	present := make(map[string]bool, len(docs))
	for _, d := range docs {
		present[d.ID] = true
	}
	children := make(map[string][]Doc)
	var roots []Doc
	for _, d := range docs {
		if d.ParentID == "" || !present[d.ParentID] {
			roots = append(roots, d)
			continue
		}
		children[d.ParentID] = append(children[d.ParentID], d)
	}

	var build func(d Doc, depth int) DocNode
	build = func(d Doc, depth int) DocNode {
		n := DocNode{Doc: d}
		if depth > len(docs) {
			return n
		}
		for _, c := range children[d.ID] {
			n.Children = append(n.Children, build(c, depth+1))
		}
		return n
	}
	out := make([]DocNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r, 0))
	}
	return out
}
