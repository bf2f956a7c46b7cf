package site

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostFormValidation(t *testing.T) {
	f := PostForm{TitlePT: "  ", Slug: "Bad Slug", PublishedAt: "01/03/2024"}
	f.normalize()
	errs := validateForm(f).Map()
	assert.Equal(t, "this field is required", errs["title_pt"])
	assert.Equal(t, "use lowercase letters, numbers and single hyphens", errs["slug"])
	assert.Contains(t, errs, "published_at")

	ok := PostForm{TitlePT: "Olá Mundo", PublishedAt: "2024-03-01"}
	ok.normalize()
	assert.Equal(t, "ola-mundo", ok.Slug, "slug derived from the title")
	assert.NoError(t, validateForm(ok).Err())
}

func TestPostFormApplyKeepsDateWhenBlank(t *testing.T) {
	existing := date(2023, 5, 1)
	p := BlogPost{PublishedAt: existing}
	PostForm{Slug: "s", TitlePT: "T", Published: true}.apply(&p)
	assert.Equal(t, existing, p.PublishedAt)

	PostForm{Slug: "s", TitlePT: "T", Published: true, PublishedAt: "2024-03-01"}.apply(&p)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(*date(2024, 3, 1)))
}

func TestPostFormApplyKeepsTimeOfDay(t *testing.T) {
	stored := time.Date(2024, 4, 12, 14, 30, 0, 0, time.UTC)
	p := BlogPost{PublishedAt: &stored}
	PostForm{Slug: "s", TitlePT: "T", Published: true, PublishedAt: "2024-04-12"}.apply(&p)
	assert.Same(t, &stored, p.PublishedAt, "same day keeps the stored timestamp")

	PostForm{Slug: "s", TitlePT: "T", Published: true, PublishedAt: "2024-04-15"}.apply(&p)
	require.NotNil(t, p.PublishedAt)
	assert.Equal(t, time.Date(2024, 4, 15, 14, 30, 0, 0, time.UTC), *p.PublishedAt)
}

func TestCommentFormValidation(t *testing.T) {
	f := CommentForm{Name: " Ana ", Email: "not-an-email", Content: ""}
	f.normalize()
	assert.Equal(t, "Ana", f.Name)
	errs := validateForm(f).Map()
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "content")
	assert.NotContains(t, errs, "name")

	assert.NoError(t, validateForm(CommentForm{Name: "Ana", Content: "Oi"}).Err(), "email is optional")
}

func TestDocFormPosition(t *testing.T) {
	errs := validateForm(DocForm{Slug: "a", TitlePT: "A", Position: -1}).Map()
	assert.Contains(t, errs, "position")
}

func TestValidateLinks(t *testing.T) {
	tests := []struct {
		name    string
		in      LinkInput
		wantErr string
	}{
		{"enabled with url", LinkInput{Key: "github", Enabled: true, URL: "https://github.com/monynha"}, ""},
		{"disabled and empty", LinkInput{Key: "github"}, ""},
		{"enabled without url", LinkInput{Key: "github", Enabled: true}, "URL is required when this link is enabled."},
		{"enabled with bad url", LinkInput{Key: "github", Enabled: true, URL: "github.com/monynha"}, "Enter a valid URL including https://"},
		{"enabled with other scheme", LinkInput{Key: "github", Enabled: true, URL: "ftp://example.com"}, "Enter a valid URL including https://"},
		{"disabled with url", LinkInput{Key: "github", URL: "https://github.com/monynha"}, "Clear the URL or enable the toggle to include this link."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := &ValidationError{}
			inputs := []LinkInput{tt.in}
			validateLinks(inputs, verr)
			assert.Equal(t, tt.wantErr, inputs[0].Error)
			if tt.wantErr == "" {
				assert.NoError(t, verr.Err())
			} else {
				assert.Equal(t, tt.wantErr, verr.Map()["links.github"])
			}
		})
	}
}

func TestParseLinkInputs(t *testing.T) {
	form := url.Values{}
	form.Set("links.github.enabled", "true")
	form.Set("links.github.url", " https://github.com/monynha ")
	form.Set("links.demo.enabled", "on")
	form.Set("links.demo.url", "https://demo.monynha.com")
	form.Set("links.website.url", "https://ignored.example.com")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	inputs := parseLinkInputs(c)
	require.Len(t, inputs, len(LinkKeys))
	assert.Equal(t, Links{
		"github": "https://github.com/monynha",
		"demo":   "https://demo.monynha.com",
	}, linksFromInputs(inputs))

	verr := &ValidationError{}
	validateLinks(inputs, verr)
	assert.Contains(t, verr.Map(), "links.website")
}

func TestLinkInputsFromStored(t *testing.T) {
	inputs := linkInputs(Links{"youtube": "https://youtube.com/@monynha"})
	require.Len(t, inputs, len(LinkKeys))
	for _, in := range inputs {
		assert.Equal(t, in.Key == "youtube", in.Enabled, in.Key)
	}
	assert.Nil(t, linksFromInputs(linkInputs(nil)))
}

func TestValidationError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, verr.Err())

	verr.Add("slug", "taken")
	verr.Add("slug", "second")
	verr.Add("name", "required")
	require.Error(t, verr.Err())
	assert.Equal(t, "validation failed: name: required; slug: second; slug: taken", verr.Error())
	assert.Equal(t, map[string]string{"slug": "taken", "name": "required"}, verr.Map())
}

func TestWriteFieldError(t *testing.T) {
	verr := &ValidationError{}
	assert.NoError(t, writeFieldError(ErrDuplicateSlug, verr))
	assert.NoError(t, writeFieldError(ErrDocCycle, verr))
	assert.Equal(t, []string{"slug", "parent_id"}, []string{verr.Fields[0].Field, verr.Fields[1].Field})

	other := assert.AnError
	assert.Equal(t, other, writeFieldError(other, verr))
}
