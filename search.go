package site

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/monynha/site/content"
)

// snippetLength is the number of runes of body text kept in a result.
const snippetLength = 200

// Search runs the query against published posts, projects and published docs
// concurrently, then merges the hits by score, best first, keeping at most
// ten. A blank query returns no results without touching the database. A table
// whose query fails is logged and left out; only a cancelled ctx fails the
// search.
func (s *Store) Search(ctx context.Context, q string, loc Locale) ([]SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	kinds := []string{ResultBlogPost, ResultProject, ResultDoc}
	hits := make([][]searchHit, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			h, err := s.searchTable(gctx, kind, q)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("search table failed", zap.String("kind", kind), zap.Error(err))
				return nil
			}
			hits[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []SearchResult
	for i, kind := range kinds {
		for _, h := range hits[i] {
			results = append(results, h.result(kind, loc))
		}
	}
	return mergeResults(results), nil
}

// mergeResults orders results by descending score, keeping the input order
// among equal scores, and truncates to searchLimit.
func mergeResults(results []SearchResult) []SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return results
}

func (h searchHit) result(kind string, loc Locale) SearchResult {
	r := SearchResult{
		ID:          h.ID,
		Title:       Localized(loc, h.TitlePT, h.TitleEN.String),
		Snippet:     content.Excerpt(content.Render(Localized(loc, h.BodyPT.String, h.BodyEN.String)), snippetLength),
		Type:        kind,
		Slug:        h.Slug,
		PublishedAt: h.PublishedAt.ptr(),
		Score:       h.Score.Float64,
	}
	switch kind {
	case ResultBlogPost:
		r.URL = "/blog/" + h.Slug + "/"
	case ResultProject:
		r.URL = "/projects/" + h.Slug + "/"
	case ResultDoc:
		r.URL = "/docs/" + h.Slug + "/"
	}
	return r
}

// ftsQuery translates free-form user input into an FTS5 MATCH expression in
// which every term is a quoted string. It understands "quoted phrases",
// OR between groups and -term exclusion. Terms without any letter or digit
// are dropped. It returns "" when nothing positive remains.
func ftsQuery(input string) string {
	var (
		groups  [][]string
		current []string
		exclude []string
	)
	for _, tok := range tokenizeQuery(input) {
		if !tok.quoted && tok.text == "OR" {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			continue
		}
		if !hasAlnum(tok.text) {
			continue
		}
		quoted := `"` + strings.ReplaceAll(tok.text, `"`, `""`) + `"`
		if tok.negated {
			exclude = append(exclude, quoted)
			continue
		}
		current = append(current, quoted)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	if len(groups) == 0 {
		return ""
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		parts = append(parts, "("+strings.Join(g, " ")+")")
	}
	expr := strings.Join(parts, " OR ")
	if len(exclude) == 0 {
		return expr
	}
	if len(parts) > 1 {
		expr = "(" + expr + ")"
	}
	for _, x := range exclude {
		expr += " NOT " + x
	}
	return expr
}

type queryToken struct {
	text    string
	quoted  bool
	negated bool
}

func tokenizeQuery(input string) []queryToken {
	var (
		tokens []queryToken
		buf    strings.Builder
		neg    bool
	)
	flush := func() {
		if buf.Len() > 0 {
			tokens = append(tokens, queryToken{text: buf.String(), negated: neg})
		}
		buf.Reset()
		neg = false
	}
	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '-' && buf.Len() == 0 && !neg:
			neg = true
		case r == '"' && buf.Len() == 0:
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			phrase := strings.Join(strings.Fields(string(runes[i+1:end])), " ")
			if phrase != "" {
				tokens = append(tokens, queryToken{text: phrase, quoted: true, negated: neg})
			}
			neg = false
			i = end
		default:
			buf.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
