// Package config loads lin's project configuration.
//
// Settings are layered, lowest first: built-in defaults, the project config
// file (lin.yaml, lin.yml, .linrc, .linrc.yaml or .linrc.json), a preset
// selected with --model, and command line flags. The result is validated
// before any command touches locale files or the network.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rettend/lin/engine"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

// Providers lists the supported model providers.
var Providers = []string{"openai", "anthropic", "google", "xai", "mistral", "groq", "cerebras", "azure"}

// Output modes.
const (
	ModeAuto = "auto"
	ModeJSON = "json"
	ModeTool = "tool"
)

// Modes lists the valid output modes.
var Modes = []string{ModeAuto, ModeJSON, ModeTool}

// Integrations lists the frameworks whose i18n settings can be read.
var Integrations = []string{
	"i18next", "nextjs", "nuxt", "vue-i18n", "angular", "svelte", "ember-intl",
	"gatsby", "solid", "qwik", "astro", "astro-i18next", "remix",
}

// Key orders for check --sort.
const (
	SortABC = "abc"
	SortDef = "def"
)

// Registry cache backends.
var CacheBackends = []string{"none", "memory", "file", "redis"}

// FileNames are the config file names searched in the project root, in order.
var FileNames = []string{"lin.yaml", "lin.yml", ".linrc", ".linrc.yaml", ".linrc.json"}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Config is the resolved configuration of one lin invocation.
type Config struct {
	Locale      StringList           `yaml:"locale"`
	Cwd         string               `yaml:"cwd"`
	Debug       bool                 `yaml:"debug"`
	Undo        bool                 `yaml:"undo"`
	Adapter     StringList           `yaml:"adapter"`
	Context     string               `yaml:"context"`
	Integration string               `yaml:"integration"`
	With        StringList           `yaml:"with"`
	Limits      Limits               `yaml:"limits"`
	Options     Options              `yaml:"options"`
	Presets     map[string]yaml.Node `yaml:"presets"`
	Parser      Parser               `yaml:"parser"`
	Adapters    Adapters             `yaml:"adapters"`
	Registry    Registry             `yaml:"registry"`
	I18n        *I18n                `yaml:"i18n"`

	// File is the config file that was loaded, empty when none exists.
	File string `yaml:"-"`
}

// Limits bounds the size of translation requests.
type Limits struct {
	// Locale is the number of locales handled per round.
	Locale int `yaml:"locale"`
	// Key is the maximum number of keys per request.
	Key int `yaml:"key"`
	// Char is the maximum number of value characters per request.
	Char int `yaml:"char"`
}

// Options configures the model provider.
type Options struct {
	Provider         string   `yaml:"provider"`
	Model            string   `yaml:"model"`
	APIKey           string   `yaml:"apiKey"`
	Temperature      *float64 `yaml:"temperature"`
	MaxOutputTokens  *int     `yaml:"maxOutputTokens"`
	TopP             *float64 `yaml:"topP"`
	FrequencyPenalty *float64 `yaml:"frequencyPenalty"`
	PresencePenalty  *float64 `yaml:"presencePenalty"`
	Seed             *int     `yaml:"seed"`
	Mode             string   `yaml:"mode"`

	// Azure only.
	ResourceName           string `yaml:"resourceName"`
	APIVersion             string `yaml:"apiVersion"`
	UseDeploymentBasedURLs bool   `yaml:"useDeploymentBasedUrls"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `yaml:"baseURL"`
}

// Parser configures the source scan of check.
type Parser struct {
	Input []string `yaml:"input"`
}

// Adapters holds per-format settings.
type Adapters struct {
	JSON     JSONAdapter     `yaml:"json"`
	Markdown MarkdownAdapter `yaml:"markdown"`
}

// JSONAdapter configures locale JSON files.
type JSONAdapter struct {
	Directory string `yaml:"directory"`
	Sort      string `yaml:"sort"`
}

// MarkdownAdapter configures Markdown documents.
type MarkdownAdapter struct {
	Files      []string `yaml:"files"`
	LocalesDir string   `yaml:"localesDir"`
	Output     string   `yaml:"output"`
}

// Registry configures the model catalog.
type Registry struct {
	BaseURL  string        `yaml:"baseUrl"`
	Status   []string      `yaml:"status"`
	Cache    string        `yaml:"cache"`
	RedisURL string        `yaml:"redisUrl"`
	TTL      time.Duration `yaml:"ttl"`
}

// StringList accepts a scalar or a sequence in YAML. A scalar holding
// commas is split.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*l = SplitList(n.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list", n.Line)
}

// SplitList splits comma separated values and drops empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Default returns the built-in configuration.
func Default() Config {
	temp := 0.0
	return Config{
		Cwd:     ".",
		Undo:    true,
		Adapter: StringList{"all"},
		With:    StringList{"none"},
		Limits:  Limits{Locale: 10, Key: 50, Char: 4000},
		Options: Options{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: &temp,
			Mode:        ModeAuto,
		},
		Parser: Parser{Input: []string{"src/**/*.{js,jsx,ts,tsx,vue,svelte,astro}"}},
		Adapters: Adapters{
			JSON:     JSONAdapter{Directory: "locales"},
			Markdown: MarkdownAdapter{LocalesDir: ".lin/markdown"},
		},
		Registry: Registry{
			BaseURL: "https://llm.rettend.me",
			Status:  []string{"latest", "preview"},
			Cache:   "file",
			TTL:     24 * time.Hour,
		},
	}
}

// ---------------------------------------------------------------------------
// Overrides
// ---------------------------------------------------------------------------

// Overrides carries values given on the command line. Nil pointers and
// empty slices leave the lower layers untouched. Numeric values stay strings
// so that invalid input becomes a ConfigurationError.
type Overrides struct {
	Cwd         *string
	Debug       *bool
	Undo        *bool
	Adapter     []string
	Locale      []string
	Context     *string
	Integration *string
	With        []string
	Provider    *string
	Model       *string
	Mode        *string
	APIKey      *string
	Temperature *string
	LimitLocale *string
	LimitKey    *string
	LimitChar   *string
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FindFile returns the first config file present in dir, or "".
func FindFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load resolves the configuration for the project in o.Cwd (default ".").
func Load(o Overrides) (*Config, error) {
	dir := "."
	if o.Cwd != nil && *o.Cwd != "" {
		dir = *o.Cwd
	}

	cfg := Default()
	if path := FindFile(dir); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			var te *yaml.TypeError
			if errors.As(err, &te) {
				return nil, &ConfigurationError{
					Field: "config",
					Msg:   fmt.Sprintf("invalid value in %s: %s", path, strings.Join(te.Errors, "; ")),
				}
			}
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		cfg.File = path
	}

	switch {
	case o.Cwd != nil && *o.Cwd != "":
		cfg.Cwd = *o.Cwd
	case cfg.Cwd == "" || cfg.Cwd == ".":
		cfg.Cwd = dir
	case !filepath.IsAbs(cfg.Cwd):
		cfg.Cwd = filepath.Join(dir, cfg.Cwd)
	}

	if o.Model != nil {
		if applied, err := cfg.applyPreset(*o.Model); err != nil {
			return nil, err
		} else if applied {
			o.Model = nil
		}
	}
	if err := cfg.apply(o); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPreset decodes the named preset over the provider options. A preset
// context replaces the top-level context.
func (c *Config) applyPreset(name string) (bool, error) {
	node, ok := c.Presets[name]
	if !ok {
		return false, nil
	}
	if err := node.Decode(&c.Options); err != nil {
		return false, fmt.Errorf("preset %q: %w", name, err)
	}
	var extra struct {
		Context string `yaml:"context"`
	}
	if err := node.Decode(&extra); err != nil {
		return false, fmt.Errorf("preset %q: %w", name, err)
	}
	if extra.Context != "" {
		c.Context = extra.Context
	}
	return true, nil
}

func (c *Config) apply(o Overrides) error {
	if o.Debug != nil {
		c.Debug = *o.Debug
	}
	if o.Undo != nil {
		c.Undo = *o.Undo
	}
	if len(o.Adapter) > 0 {
		c.Adapter = expandList(o.Adapter)
	}
	if len(o.Locale) > 0 {
		c.Locale = expandList(o.Locale)
	}
	if o.Context != nil {
		c.Context = *o.Context
	}
	if o.Integration != nil {
		c.Integration = *o.Integration
	}
	if len(o.With) > 0 {
		c.With = expandList(o.With)
	}
	if o.Provider != nil {
		c.Options.Provider = *o.Provider
	}
	if o.Model != nil {
		c.Options.Model = *o.Model
	}
	if o.Mode != nil {
		c.Options.Mode = *o.Mode
	}
	if o.APIKey != nil {
		c.Options.APIKey = *o.APIKey
	}
	if o.Temperature != nil {
		t, err := strconv.ParseFloat(*o.Temperature, 64)
		if err != nil {
			return invalid("temperature", *o.Temperature)
		}
		c.Options.Temperature = &t
	}
	for _, l := range []struct {
		field string
		value *string
		dst   *int
	}{
		{"limit.locale", o.LimitLocale, &c.Limits.Locale},
		{"limit.key", o.LimitKey, &c.Limits.Key},
		{"limit.char", o.LimitChar, &c.Limits.Char},
	} {
		if l.value == nil {
			continue
		}
		n, err := strconv.Atoi(*l.value)
		if err != nil {
			return invalid(l.field, *l.value)
		}
		*l.dst = n
	}
	return nil
}

func expandList(values []string) StringList {
	var out StringList
	for _, v := range values {
		out = append(out, SplitList(v)...)
	}
	return out
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks every enumerated and numeric setting.
func (c *Config) Validate() error {
	if c.Options.Provider == "" {
		return &ConfigurationError{Field: "provider", Valid: Providers}
	}
	if !contains(Providers, c.Options.Provider) {
		return invalid("provider", c.Options.Provider, Providers...)
	}
	if c.Options.Model == "" {
		return &ConfigurationError{Field: "model"}
	}
	if c.Options.Mode == "" {
		c.Options.Mode = ModeAuto
	}
	if !contains(Modes, c.Options.Mode) {
		return invalid("mode", c.Options.Mode, Modes...)
	}
	for _, l := range []struct {
		field string
		value int
	}{
		{"limit.locale", c.Limits.Locale},
		{"limit.key", c.Limits.Key},
		{"limit.char", c.Limits.Char},
	} {
		if l.value <= 0 {
			return &ConfigurationError{
				Field: l.field,
				Value: strconv.Itoa(l.value),
				Msg:   fmt.Sprintf("invalid %s %d: must be a positive number", l.field, l.value),
			}
		}
	}
	if c.Integration != "" && !contains(Integrations, c.Integration) {
		return invalid("integration", c.Integration, Integrations...)
	}
	if s := c.Adapters.JSON.Sort; s != "" && s != SortABC && s != SortDef {
		return invalid("sort", s, SortABC, SortDef)
	}
	if c.Registry.Cache != "" && !contains(CacheBackends, c.Registry.Cache) {
		return invalid("registry.cache", c.Registry.Cache, CacheBackends...)
	}
	if _, err := c.AdapterKinds(); err != nil {
		return err
	}
	if c.Options.Provider != "azure" {
		c.Options.ResourceName = ""
		c.Options.APIVersion = ""
		c.Options.UseDeploymentBasedURLs = false
	}
	return nil
}

// AdapterKinds resolves the adapter setting. "all" expands to every
// configured adapter; naming an adapter that is not configured is an error.
func (c *Config) AdapterKinds() ([]engine.Kind, error) {
	var configured []engine.Kind
	if c.Adapters.JSON.Directory != "" {
		configured = append(configured, engine.JSON)
	}
	if len(c.Adapters.Markdown.Files) > 0 {
		configured = append(configured, engine.Markdown)
	}

	var out []engine.Kind
	seen := map[engine.Kind]bool{}
	for _, name := range c.Adapter {
		if strings.EqualFold(name, "all") {
			for _, k := range configured {
				if !seen[k] {
					seen[k] = true
					out = append(out, k)
				}
			}
			continue
		}
		k, err := engine.ParseKind(name)
		if err != nil {
			return nil, invalid("adapter", name, "all", string(engine.JSON), string(engine.Markdown))
		}
		if !containsKind(configured, k) {
			hint := "directory"
			if k == engine.Markdown {
				hint = "files"
			}
			return nil, &ConfigurationError{
				Field: "adapter",
				Value: name,
				Msg:   fmt.Sprintf("the %s adapter is not configured: set adapters.%s.%s", k, k, hint),
			}
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return nil, &ConfigurationError{Field: "adapter", Msg: "no adapters are configured"}
	}
	return out, nil
}

// ParseSort validates a --sort value.
func ParseSort(s string) (string, error) {
	switch s {
	case SortABC, SortDef:
		return s, nil
	}
	return "", invalid("sort", s, SortABC, SortDef)
}

// Path resolves a path relative to the project root.
func (c *Config) Path(elem ...string) string {
	if len(elem) > 0 && filepath.IsAbs(elem[0]) {
		return filepath.Join(elem...)
	}
	return filepath.Join(append([]string{c.Cwd}, elem...)...)
}

// LocalePath returns the JSON file of a locale.
func (c *Config) LocalePath(locale string) string {
	return c.Path(c.Adapters.JSON.Directory, locale+".json")
}

// SnapshotPath returns the Markdown snapshot of a locale.
func (c *Config) SnapshotPath(locale string) string {
	return c.Path(c.Adapters.Markdown.LocalesDir, locale+".json")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsKind(list []engine.Kind, k engine.Kind) bool {
	for _, v := range list {
		if v == k {
			return true
		}
	}
	return false
}
