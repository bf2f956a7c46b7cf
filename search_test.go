package site

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single term", "go", `("go")`},
		{"terms are ANDed", "hello world", `("hello" "world")`},
		{"quoted phrase", `"exact phrase" other`, `("exact phrase" "other")`},
		{"unclosed quote", `"open phrase`, `("open phrase")`},
		{"or groups", "a OR b", `("a") OR ("b")`},
		{"leading or is ignored", "OR go", `("go")`},
		{"lowercase or is a term", "a or b", `("a" "or" "b")`},
		{"exclusion", "go -java", `("go") NOT "java"`},
		{"exclusion with groups", "a OR b -c", `(("a") OR ("b")) NOT "c"`},
		{"embedded quote is escaped", `say"hi`, `("say""hi")`},
		{"operators are quoted", "NEAR(a b) *", `("NEAR(a" "b)")`},
		{"only exclusions", "-only", ""},
		{"punctuation only", "*** ---", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ftsQuery(tt.input))
		})
	}
}

func TestMergeResults(t *testing.T) {
	var in []SearchResult
	for i := 0; i < 15; i++ {
		in = append(in, SearchResult{ID: fmt.Sprint(i), Score: float64(i % 5)})
	}
	out := mergeResults(in)
	require.Len(t, out, searchLimit)
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Score, out[i].Score)
	}
	// Ties keep their input order.
	assert.Equal(t, []string{"4", "9", "14"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func seedSearchContent(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	mustPost(t, s, BlogPost{
		Slug: "apis-resilientes", TitlePT: "Construindo APIs resilientes", TitleEN: "Building resilient APIs",
		ContentPT: "Timeouts e **retries** com backoff.", ContentEN: "Timeouts and **retries** with backoff.",
		Published: true, PublishedAt: date(2024, 4, 12),
	})
	mustPost(t, s, BlogPost{Slug: "rascunho", TitlePT: "Rascunho sobre APIs", ContentPT: "APIs secretas"})

	p := Project{Slug: "nexus-lab", NamePT: "Nexus Lab", DescriptionPT: "Protótipos com APIs emergentes", DescriptionEN: "Prototypes with emerging APIs"}
	require.NoError(t, s.SaveProject(ctx, &p))

	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "introducao", TitlePT: "Introdução", TitleEN: "Introduction", ContentPT: "Guia das APIs", Published: true}))
	require.NoError(t, s.SaveDoc(ctx, &Doc{Slug: "oculto", TitlePT: "Oculto", ContentPT: "APIs internas"}))
}

func TestSearchAcrossTables(t *testing.T) {
	s := newTestStore(t)
	seedSearchContent(t, s)

	results, err := s.Search(context.Background(), "apis", LocalePT)
	require.NoError(t, err)

	byType := map[string][]string{}
	for _, r := range results {
		byType[r.Type] = append(byType[r.Type], r.Slug)
	}
	assert.Equal(t, []string{"apis-resilientes"}, byType[ResultBlogPost], "drafts are not searchable")
	assert.Equal(t, []string{"nexus-lab"}, byType[ResultProject])
	assert.Equal(t, []string{"introducao"}, byType[ResultDoc], "unpublished docs are not searchable")

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchLocalizesAndLinks(t *testing.T) {
	s := newTestStore(t)
	seedSearchContent(t, s)

	results, err := s.Search(context.Background(), "resilient", LocaleEN)
	require.NoError(t, err)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, "Building resilient APIs", r.Title)
	assert.Equal(t, "/blog/apis-resilientes/", r.URL)
	assert.Equal(t, "Timeouts and retries with backoff.", r.Snippet)
	require.NotNil(t, r.PublishedAt)
}

func TestSearchIgnoresDiacritics(t *testing.T) {
	s := newTestStore(t)
	seedSearchContent(t, s)

	results, err := s.Search(context.Background(), "introducao", LocalePT)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Introdução", results[0].Title)
	assert.Equal(t, "/docs/introducao/", results[0].URL)
}

func TestSearchBlankAndUnmatchable(t *testing.T) {
	s := newTestStore(t)
	seedSearchContent(t, s)

	for _, q := range []string{"", "   ", "***", "-apis"} {
		results, err := s.Search(context.Background(), q, LocalePT)
		require.NoError(t, err, q)
		assert.Empty(t, results, q)
	}
}

func TestSearchCapsResults(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 8; i++ {
		mustPost(t, s, BlogPost{Slug: fmt.Sprintf("post-%d", i), TitlePT: "Golang dica", Published: true})
		p := Project{Slug: fmt.Sprintf("proj-%d", i), NamePT: "Golang projeto"}
		require.NoError(t, s.SaveProject(context.Background(), &p))
	}
	results, err := s.Search(context.Background(), "golang", LocalePT)
	require.NoError(t, err)
	assert.Len(t, results, searchLimit)
}

func TestSearchSkipsFailingTable(t *testing.T) {
	s := newTestStore(t)
	seedSearchContent(t, s)
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `DROP TABLE projects_fts`)
	require.NoError(t, err)

	results, err := s.Search(ctx, "apis", LocalePT)
	require.NoError(t, err)
	var slugs []string
	for _, r := range results {
		slugs = append(slugs, r.Slug)
	}
	assert.ElementsMatch(t, []string{"apis-resilientes", "introducao"}, slugs)
}

func TestSearchCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, "apis", LocalePT)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchSurvivesVacuum(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	first := mustPost(t, s, BlogPost{Slug: "primeiro", TitlePT: "Primeiro", ContentPT: "abacaxi", Published: true})
	mustPost(t, s, BlogPost{Slug: "segundo", TitlePT: "Segundo", ContentPT: "banana", Published: true})
	mustPost(t, s, BlogPost{Slug: "terceiro", TitlePT: "Terceiro", ContentPT: "caqui", Published: true})
	require.NoError(t, s.DeletePost(ctx, first.ID))

	_, err := s.db.ExecContext(ctx, `VACUUM`)
	require.NoError(t, err)

	results, err := s.Search(ctx, "caqui", LocalePT)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "terceiro", results[0].Slug)
}
