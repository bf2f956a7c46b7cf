package site

import (
	"context"
	"database/sql"
)

const projectColumns = `id, slug, name_pt, name_en, description_pt, description_en, icon, links, created_at, updated_at`

type projectRow struct {
	ID            string         `db:"id"`
	Slug          string         `db:"slug"`
	NamePT        string         `db:"name_pt"`
	NameEN        sql.NullString `db:"name_en"`
	DescriptionPT sql.NullString `db:"description_pt"`
	DescriptionEN sql.NullString `db:"description_en"`
	Icon          sql.NullString `db:"icon"`
	Links         Links          `db:"links"`
	CreatedAt     dbTime         `db:"created_at"`
	UpdatedAt     dbTime         `db:"updated_at"`
}

func (r projectRow) project() Project {
	return Project{
		ID:            r.ID,
		Slug:          r.Slug,
		NamePT:        r.NamePT,
		NameEN:        r.NameEN.String,
		DescriptionPT: r.DescriptionPT.String,
		DescriptionEN: r.DescriptionEN.String,
		Icon:          r.Icon.String,
		Links:         r.Links,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

// ListProjects returns every project, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	var rows []projectRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, slug`); err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.project())
	}
	return out, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (Project, error) {
	var r projectRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id); err != nil {
		return Project{}, mapReadErr(err)
	}
	return r.project(), nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	var r projectRow
	if err := s.db.GetContext(ctx, &r, s.q(`SELECT `+projectColumns+` FROM projects WHERE slug = ?`), slug); err != nil {
		return Project{}, mapReadErr(err)
	}
	return r.project(), nil
}

// SaveProject inserts p when its ID is empty and updates it otherwise.
func (s *Store) SaveProject(ctx context.Context, p *Project) error {
	now := s.now().UTC()
	if p.ID == "" {
		p.ID = newID()
		p.CreatedAt, p.UpdatedAt = now, now
		err := execWrite(ctx, s.db, false,
			s.q(`INSERT INTO projects (id, slug, name_pt, name_en, description_pt, description_en, icon, links, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.Slug, p.NamePT, nullable(p.NameEN), nullable(p.DescriptionPT), nullable(p.DescriptionEN), nullable(p.Icon), p.Links, now, now)
		if err != nil {
			p.ID = ""
		}
		return err
	}
	p.UpdatedAt = now
	return execWrite(ctx, s.db, true,
		s.q(`UPDATE projects SET slug = ?, name_pt = ?, name_en = ?, description_pt = ?, description_en = ?, icon = ?, links = ?, updated_at = ? WHERE id = ?`),
		p.Slug, p.NamePT, nullable(p.NameEN), nullable(p.DescriptionPT), nullable(p.DescriptionEN), nullable(p.Icon), p.Links, now, p.ID)
}

// DeleteProject removes a project. Its docs remain, detached.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return execWrite(ctx, s.db, true, s.q(`DELETE FROM projects WHERE id = ?`), id)
}
