package site

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/labstack/echo/v4"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	// custom validation tags
	notBlankTag = "notblank"
	slugTag     = "slug"
)

var customMessages = map[string]string{
	notBlankTag: "this field is required",
	slugTag:     "use lowercase letters, numbers and single hyphens",
}

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report form field names instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation(slugTag, func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	// The default translations are already registered, so a noop
	// registration func satisfies RegisterTranslation.
	registerFn := func(ut.Translator) error { return nil }
	for tag := range customMessages {
		_ = validate.RegisterTranslation(tag, translator, registerFn, func(_ ut.Translator, fe validator.FieldError) string {
			return customMessages[fe.Tag()]
		})
	}
}

// validateForm runs struct validation and converts failures to a
// *ValidationError keyed by form field name.
func validateForm(form any) *ValidationError {
	verr := &ValidationError{}
	if err := validate.Struct(form); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				verr.Add(fe.Field(), fe.Translate(translator))
			}
		} else {
			verr.Add("form", err.Error())
		}
	}
	return verr
}

// bindForm binds the request form into dst, answering 400 on malformed input.
func bindForm(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form data").SetInternal(err)
	}
	return nil
}

func trimAll(vals ...*string) {
	for _, v := range vals {
		*v = strings.TrimSpace(*v)
	}
}

// LinkInput is the enabled/url pair the admin forms show for every link key.
type LinkInput struct {
	Key     string
	Label   string
	Enabled bool
	URL     string
	Error   string
}

// linkInputs expands stored links into one input per key, enabling those with a URL.
func linkInputs(l Links) []LinkInput {
	out := make([]LinkInput, 0, len(LinkKeys))
	for _, k := range LinkKeys {
		u := strings.TrimSpace(l[k])
		out = append(out, LinkInput{Key: k, Label: LinkLabels[k], Enabled: u != "", URL: u})
	}
	return out
}

// parseLinkInputs reads links.<key>.enabled / links.<key>.url form values.
func parseLinkInputs(c echo.Context) []LinkInput {
	out := make([]LinkInput, 0, len(LinkKeys))
	for _, k := range LinkKeys {
		enabled := c.FormValue("links."+k+".enabled")
		out = append(out, LinkInput{
			Key:     k,
			Label:   LinkLabels[k],
			Enabled: enabled == "true" || enabled == "on",
			URL:     strings.TrimSpace(c.FormValue("links." + k + ".url")),
		})
	}
	return out
}

// validateLinks applies the link rules: an enabled link needs an absolute
// http(s) URL and a disabled link must not carry one. Errors are reported
// on the inputs and under "links.<key>" in verr.
func validateLinks(inputs []LinkInput, verr *ValidationError) {
	for i := range inputs {
		in := &inputs[i]
		switch {
		case in.Enabled && in.URL == "":
			in.Error = "URL is required when this link is enabled."
		case in.Enabled && validate.Var(in.URL, "http_url") != nil:
			in.Error = "Enter a valid URL including https://"
		case !in.Enabled && in.URL != "":
			in.Error = "Clear the URL or enable the toggle to include this link."
		default:
			continue
		}
		verr.Add("links."+in.Key, in.Error)
	}
}

// linksFromInputs keeps the enabled links with a URL.
func linksFromInputs(inputs []LinkInput) Links {
	l := Links{}
	for _, in := range inputs {
		if in.Enabled && in.URL != "" {
			l[in.Key] = in.URL
		}
	}
	if len(l) == 0 {
		return nil
	}
	return l
}

// PostForm is the admin blog post form.
type PostForm struct {
	Slug        string   `form:"slug" validate:"required,slug,max=200"`
	TitlePT     string   `form:"title_pt" validate:"notblank,max=300"`
	TitleEN     string   `form:"title_en" validate:"max=300"`
	ContentPT   string   `form:"content_pt"`
	ContentEN   string   `form:"content_en"`
	AuthorID    string   `form:"author_id"`
	Categories  []string `form:"categories"`
	Published   bool     `form:"published"`
	PublishedAt string   `form:"published_at" validate:"omitempty,datetime=2006-01-02"`
}

func (f *PostForm) normalize() {
	trimAll(&f.Slug, &f.TitlePT, &f.TitleEN, &f.AuthorID, &f.PublishedAt)
	if f.Slug == "" {
		f.Slug = Slugify(f.TitlePT)
	}
}

// apply copies the form onto p. The form only carries the day, so the stored
// publication time is kept when the day is unchanged, and its time of day is
// kept when only the day moves.
func (f PostForm) apply(p *BlogPost) {
	p.Slug = f.Slug
	p.TitlePT = f.TitlePT
	p.TitleEN = f.TitleEN
	p.ContentPT = f.ContentPT
	p.ContentEN = f.ContentEN
	p.AuthorID = f.AuthorID
	p.Published = f.Published
	p.PublishedAt = mergePublishDate(p.PublishedAt, f.PublishedAt)
}

func mergePublishDate(stored *time.Time, day string) *time.Time {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return stored
	}
	if stored == nil {
		return &d
	}
	old := stored.UTC()
	if old.Format("2006-01-02") == day {
		return stored
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), old.Hour(), old.Minute(), old.Second(), old.Nanosecond(), time.UTC)
	return &t
}

// ProjectForm is the admin project form. Links are parsed separately.
type ProjectForm struct {
	Slug          string `form:"slug" validate:"required,slug,max=200"`
	NamePT        string `form:"name_pt" validate:"notblank,max=200"`
	NameEN        string `form:"name_en" validate:"max=200"`
	DescriptionPT string `form:"description_pt"`
	DescriptionEN string `form:"description_en"`
	Icon          string `form:"icon" validate:"max=64"`
}

func (f *ProjectForm) normalize() {
	trimAll(&f.Slug, &f.NamePT, &f.NameEN, &f.DescriptionPT, &f.DescriptionEN, &f.Icon)
	if f.Slug == "" {
		f.Slug = Slugify(f.NamePT)
	}
}

func (f ProjectForm) apply(p *Project) {
	p.Slug = f.Slug
	p.NamePT = f.NamePT
	p.NameEN = f.NameEN
	p.DescriptionPT = f.DescriptionPT
	p.DescriptionEN = f.DescriptionEN
	p.Icon = f.Icon
}

// AuthorForm is the admin author form. Links are parsed separately.
type AuthorForm struct {
	Name     string `form:"name" validate:"notblank,max=200"`
	Bio      string `form:"bio" validate:"max=5000"`
	PhotoURL string `form:"photo_url" validate:"max=500"`
}

func (f *AuthorForm) normalize() {
	trimAll(&f.Name, &f.Bio, &f.PhotoURL)
}

func (f AuthorForm) apply(a *Author) {
	a.Name = f.Name
	a.Bio = f.Bio
	a.PhotoURL = f.PhotoURL
}

type CategoryForm struct {
	Slug          string `form:"slug" validate:"required,slug,max=200"`
	TitlePT       string `form:"title_pt" validate:"notblank,max=200"`
	TitleEN       string `form:"title_en" validate:"max=200"`
	DescriptionPT string `form:"description_pt" validate:"max=2000"`
	DescriptionEN string `form:"description_en" validate:"max=2000"`
}

func (f *CategoryForm) normalize() {
	trimAll(&f.Slug, &f.TitlePT, &f.TitleEN, &f.DescriptionPT, &f.DescriptionEN)
	if f.Slug == "" {
		f.Slug = Slugify(f.TitlePT)
	}
}

func (f CategoryForm) apply(c *Category) {
	c.Slug = f.Slug
	c.TitlePT = f.TitlePT
	c.TitleEN = f.TitleEN
	c.DescriptionPT = f.DescriptionPT
	c.DescriptionEN = f.DescriptionEN
}

type DocForm struct {
	Slug      string `form:"slug" validate:"required,slug,max=200"`
	TitlePT   string `form:"title_pt" validate:"notblank,max=300"`
	TitleEN   string `form:"title_en" validate:"max=300"`
	ContentPT string `form:"content_pt"`
	ContentEN string `form:"content_en"`
	ParentID  string `form:"parent_id"`
	ProjectID string `form:"project_id"`
	Position  int    `form:"position" validate:"gte=0,lte=10000"`
	Published bool   `form:"published"`
}

func (f *DocForm) normalize() {
	trimAll(&f.Slug, &f.TitlePT, &f.TitleEN, &f.ParentID, &f.ProjectID)
	if f.Slug == "" {
		f.Slug = Slugify(f.TitlePT)
	}
}

func (f DocForm) apply(d *Doc) {
	d.Slug = f.Slug
	d.TitlePT = f.TitlePT
	d.TitleEN = f.TitleEN
	d.ContentPT = f.ContentPT
	d.ContentEN = f.ContentEN
	d.ParentID = f.ParentID
	d.ProjectID = f.ProjectID
	d.Position = f.Position
	d.Published = f.Published
}

// CommentForm is the public comment form. Website is a honeypot that real
// visitors never see.
type CommentForm struct {
	Name    string `form:"name" validate:"notblank,max=100"`
	Email   string `form:"email" validate:"omitempty,email,max=200"`
	Content string `form:"content" validate:"notblank,max=5000"`
	Website string `form:"website"`
}

func (f *CommentForm) normalize() {
	trimAll(&f.Name, &f.Email, &f.Content, &f.Website)
}
