package site

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the site. It is loaded by viper from
// monynha.yaml, MONYNHA_* environment variables and command-line flags.
type Config struct {
	Debug bool   `mapstructure:"debug"`
	Addr  string `mapstructure:"addr"` // Listen address (default ":3000")

	Site       SiteSettings `mapstructure:"site"`
	Navigation []NavItem    `mapstructure:"navigation"`

	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Media    MediaConfig    `mapstructure:"media"`

	CacheTTL time.Duration `mapstructure:"cache_ttl"` // Catalogue cache TTL (default 5m)
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" (default) or "postgres"
	DSN    string `mapstructure:"dsn"`    // SQLite path or Postgres URL
}

// AdminConfig configures the admin login and its session cookie.
type AdminConfig struct {
	Password      string `mapstructure:"password"`
	PasswordHash  string `mapstructure:"password_hash"` // bcrypt; takes precedence over Password
	SessionSecret string `mapstructure:"session_secret"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`
}

// MediaConfig configures the media bucket used for uploads.
type MediaConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxWidth int    `mapstructure:"max_width"`
}

// SiteSettings are the global, localized settings rendered on every page.
type SiteSettings struct {
	URL           string            `mapstructure:"url"`
	TitlePT       string            `mapstructure:"title_pt"`
	TitleEN       string            `mapstructure:"title_en"`
	DescriptionPT string            `mapstructure:"description_pt"`
	DescriptionEN string            `mapstructure:"description_en"`
	Author        string            `mapstructure:"author"`
	Email         string            `mapstructure:"email"`
	Social        map[string]string `mapstructure:"social"`
	Hero          HeroSettings      `mapstructure:"hero"`
}

// HeroSettings is the home page banner.
type HeroSettings struct {
	HeadingPT    string `mapstructure:"heading_pt"`
	HeadingEN    string `mapstructure:"heading_en"`
	SubheadingPT string `mapstructure:"subheading_pt"`
	SubheadingEN string `mapstructure:"subheading_en"`
}

func (s SiteSettings) Title(loc Locale) string { return Localized(loc, s.TitlePT, s.TitleEN) }

func (s SiteSettings) Description(loc Locale) string {
	return Localized(loc, s.DescriptionPT, s.DescriptionEN)
}

func (h HeroSettings) Heading(loc Locale) string { return Localized(loc, h.HeadingPT, h.HeadingEN) }

func (h HeroSettings) Subheading(loc Locale) string {
	return Localized(loc, h.SubheadingPT, h.SubheadingEN)
}

// SocialLinks returns the configured social links in a stable order.
func (s SiteSettings) SocialLinks() []Link {
	return Links(s.Social).Sorted()
}

// NavItem is a header navigation entry.
type NavItem struct {
	LabelPT string `mapstructure:"label_pt"`
	LabelEN string `mapstructure:"label_en"`
	Href    string `mapstructure:"href"`
}

func (n NavItem) Label(loc Locale) string { return Localized(loc, n.LabelPT, n.LabelEN) }

var defaultNavigation = []NavItem{
	{LabelPT: "Início", LabelEN: "Home", Href: "/"},
	{LabelPT: "Blog", LabelEN: "Blog", Href: "/blog/"},
	{LabelPT: "Projetos", LabelEN: "Projects", Href: "/projects/"},
	{LabelPT: "Documentação", LabelEN: "Docs", Href: "/docs/"},
	{LabelPT: "Busca", LabelEN: "Search", Href: "/search/"},
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("addr", ":3000")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.title_pt", "Monynha Softwares")
	v.SetDefault("site.title_en", "Monynha Softwares")
	v.SetDefault("site.description_pt", "Desenvolvimento de software com tecnologia de ponta.")
	v.SetDefault("site.description_en", "Software development with cutting-edge technology.")
	v.SetDefault("database.driver", string(DialectSQLite))
	v.SetDefault("database.dsn", "data/site.db")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.cookie_secure", false)
	v.SetDefault("media.dir", "data/media")
	v.SetDefault("media.max_width", 1200)
	v.SetDefault("cache_ttl", 5*time.Minute)
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	c.Site.URL = strings.TrimRight(c.Site.URL, "/")
	if c.Database.Driver == "" {
		c.Database.Driver = string(DialectSQLite)
	}
	if c.Database.DSN == "" && Dialect(c.Database.Driver) == DialectSQLite {
		c.Database.DSN = "data/site.db"
	}
	if c.Media.Dir == "" {
		c.Media.Dir = "data/media"
	}
	if c.Media.MaxWidth <= 0 {
		c.Media.MaxWidth = 1200
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if len(c.Navigation) == 0 {
		c.Navigation = defaultNavigation
	}
}

func (c *Config) validate() error {
	switch Dialect(c.Database.Driver) {
	case DialectSQLite, DialectPostgres:
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	u, err := url.Parse(c.Site.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site.url %q must be an absolute URL", c.Site.URL)
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return errors.New("admin.password or admin.password_hash is required")
	}
	if len(c.Admin.SessionSecret) < 32 {
		return errors.New("admin.session_secret must be at least 32 characters")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithBucket replaces the media bucket, mainly for tests.
func WithBucket(b *Bucket) Option {
	return func(a *App) {
		a.Media = b
	}
}

// WithStore uses an already opened store instead of opening
// Config.Database. The caller keeps ownership of it.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
