// Package seed loads the sample content shipped with the site into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	site "github.com/monynha/site"
)

//go:embed content.yaml
var defaultContent []byte

// File is the layout of a seed file. Posts and docs refer to authors by
// name and to categories, projects and parent docs by slug.
type File struct {
	Authors    []Author   `yaml:"authors"`
	Categories []Category `yaml:"categories"`
	Projects   []Project  `yaml:"projects"`
	Docs       []Doc      `yaml:"docs"`
	Posts      []Post     `yaml:"posts"`
}

type Author struct {
	Name     string            `yaml:"name"`
	Bio      string            `yaml:"bio"`
	PhotoURL string            `yaml:"photo_url"`
	Links    map[string]string `yaml:"links"`
}

type Category struct {
	Slug          string `yaml:"slug"`
	TitlePT       string `yaml:"title_pt"`
	TitleEN       string `yaml:"title_en"`
	DescriptionPT string `yaml:"description_pt"`
	DescriptionEN string `yaml:"description_en"`
}

type Project struct {
	Slug          string            `yaml:"slug"`
	NamePT        string            `yaml:"name_pt"`
	NameEN        string            `yaml:"name_en"`
	DescriptionPT string            `yaml:"description_pt"`
	DescriptionEN string            `yaml:"description_en"`
	Icon          string            `yaml:"icon"`
	Links         map[string]string `yaml:"links"`
}

type Doc struct {
	Slug      string `yaml:"slug"`
	Project   string `yaml:"project"`
	Parent    string `yaml:"parent"`
	Position  int    `yaml:"position"`
	Draft     bool   `yaml:"draft"`
	TitlePT   string `yaml:"title_pt"`
	TitleEN   string `yaml:"title_en"`
	ContentPT string `yaml:"content_pt"`
	ContentEN string `yaml:"content_en"`
}

type Post struct {
	Slug        string   `yaml:"slug"`
	Author      string   `yaml:"author"`
	Categories  []string `yaml:"categories"`
	Draft       bool     `yaml:"draft"`
	PublishedAt string   `yaml:"published_at"`
	TitlePT     string   `yaml:"title_pt"`
	TitleEN     string   `yaml:"title_en"`
	ContentPT   string   `yaml:"content_pt"`
	ContentEN   string   `yaml:"content_en"`
}

// Result counts the rows a seed run created.
type Result struct {
	Authors, Categories, Projects, Docs, Posts int
}

// Parse decodes a seed file.
func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Default returns the embedded sample content.
func Default() *File {
	f, err := Parse(defaultContent)
	if err != nil {
		panic(err)
	}
	return f
}

// Run writes f into store. Rows that already exist (same author name, same
// slug) are left untouched, so running it twice is harmless.
func Run(ctx context.Context, store *site.Store, f *File, log *zap.Logger) (Result, error) {
	var res Result
	r := &runner{store: store}
	if err := r.index(ctx); err != nil {
		return res, err
	}

	for _, a := range f.Authors {
		if _, ok := r.authors[a.Name]; ok {
			continue
		}
		au := site.Author{Name: a.Name, Bio: a.Bio, PhotoURL: a.PhotoURL, Links: site.Links(a.Links)}
		if err := store.SaveAuthor(ctx, &au); err != nil {
			return res, fmt.Errorf("author %q: %w", a.Name, err)
		}
		r.authors[a.Name] = au.ID
		res.Authors++
	}

	for _, c := range f.Categories {
		if _, ok := r.categories[c.Slug]; ok {
			continue
		}
		cat := site.Category{Slug: c.Slug, TitlePT: c.TitlePT, TitleEN: c.TitleEN, DescriptionPT: c.DescriptionPT, DescriptionEN: c.DescriptionEN}
		if err := store.SaveCategory(ctx, &cat); err != nil {
			return res, fmt.Errorf("category %q: %w", c.Slug, err)
		}
		r.categories[c.Slug] = cat.ID
		res.Categories++
	}

	for _, p := range f.Projects {
		if _, ok := r.projects[p.Slug]; ok {
			continue
		}
		pr := site.Project{
			Slug: p.Slug, NamePT: p.NamePT, NameEN: p.NameEN,
			DescriptionPT: p.DescriptionPT, DescriptionEN: p.DescriptionEN,
			Icon: p.Icon, Links: site.Links(p.Links),
		}
		if err := store.SaveProject(ctx, &pr); err != nil {
			return res, fmt.Errorf("project %q: %w", p.Slug, err)
		}
		r.projects[p.Slug] = pr.ID
		res.Projects++
	}

	for _, d := range f.Docs {
		if _, ok := r.docs[d.Slug]; ok {
			continue
		}
		doc := site.Doc{
			Slug: d.Slug, TitlePT: d.TitlePT, TitleEN: d.TitleEN,
			ContentPT: d.ContentPT, ContentEN: d.ContentEN,
			Position: d.Position, Published: !d.Draft,
		}
		var err error
		if doc.ProjectID, err = lookup(r.projects, "project", d.Project); err != nil {
			return res, fmt.Errorf("doc %q: %w", d.Slug, err)
		}
		if doc.ParentID, err = lookup(r.docs, "parent doc", d.Parent); err != nil {
			return res, fmt.Errorf("doc %q: %w", d.Slug, err)
		}
		if err := store.SaveDoc(ctx, &doc); err != nil {
			return res, fmt.Errorf("doc %q: %w", d.Slug, err)
		}
		r.docs[d.Slug] = doc.ID
		res.Docs++
	}

	for _, p := range f.Posts {
		post := site.BlogPost{
			Slug: p.Slug, TitlePT: p.TitlePT, TitleEN: p.TitleEN,
			ContentPT: p.ContentPT, ContentEN: p.ContentEN,
			Published: !p.Draft,
		}
		var err error
		if post.AuthorID, err = lookup(r.authors, "author", p.Author); err != nil {
			return res, fmt.Errorf("post %q: %w", p.Slug, err)
		}
		if p.PublishedAt != "" {
			t, err := time.Parse("2006-01-02", p.PublishedAt)
			if err != nil {
				return res, fmt.Errorf("post %q: published_at: %w", p.Slug, err)
			}
			post.PublishedAt = &t
		}
		categoryIDs := make([]string, 0, len(p.Categories))
		for _, slug := range p.Categories {
			id, err := lookup(r.categories, "category", slug)
			if err != nil {
				return res, fmt.Errorf("post %q: %w", p.Slug, err)
			}
			categoryIDs = append(categoryIDs, id)
		}
		err = store.SavePost(ctx, &post, categoryIDs)
		if errors.Is(err, site.ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("post %q: %w", p.Slug, err)
		}
		res.Posts++
	}

	log.Info("seed finished",
		zap.Int("authors", res.Authors),
		zap.Int("categories", res.Categories),
		zap.Int("projects", res.Projects),
		zap.Int("docs", res.Docs),
		zap.Int("posts", res.Posts),
	)
	return res, nil
}

// runner holds the IDs of existing rows keyed by their seed reference.
type runner struct {
	store *site.Store

	authors    map[string]string
	categories map[string]string
	projects   map[string]string
	docs       map[string]string
}

func (r *runner) index(ctx context.Context) error {
	r.authors = map[string]string{}
	r.categories = map[string]string{}
	r.projects = map[string]string{}
	r.docs = map[string]string{}

	authors, err := r.store.ListAuthors(ctx)
	if err != nil {
		return err
	}
	for _, a := range authors {
		r.authors[a.Name] = a.ID
	}
	categories, err := r.store.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		r.categories[c.Slug] = c.ID
	}
	projects, err := r.store.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		r.projects[p.Slug] = p.ID
	}
	docs, err := r.store.ListDocs(ctx, site.DocFilter{})
	if err != nil {
		return err
	}
	for _, d := range docs {
		r.docs[d.Slug] = d.ID
	}
	return nil
}

func lookup(ids map[string]string, kind, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	id, ok := ids[ref]
	if !ok {
		return "", fmt.Errorf("unknown %s %q", kind, ref)
	}
	return id, nil
}
