package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLocale is used when a source names locales but no default.
const DefaultLocale = "en-US"

// I18n is the normalized locale setup of a project.
type I18n struct {
	Locales       []string `yaml:"locales" json:"locales"`
	DefaultLocale string   `yaml:"defaultLocale" json:"defaultLocale"`
}

// Targets returns every locale except the default one.
func (i I18n) Targets() []string {
	var out []string
	for _, l := range i.Locales {
		if l != i.DefaultLocale {
			out = append(out, l)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

// Source is one place an I18n setup can be read from. Resolve returns nil
// when the source does not apply to the project.
type Source struct {
	// Name is shown by check --info.
	Name string
	// Integrations restricts the source to these integrations. Empty means
	// the source is always searched.
	Integrations []string
	Resolve      func(c *Config) (*I18n, error)
}

// Sources lists every source in search order.
var Sources = []Source{
	{Name: "lin config", Resolve: fromLinConfig},
	{Name: "i18n.config.json", Resolve: fromI18nFile},
	{Name: "package.json", Integrations: []string{"remix", "qwik", "i18next"}, Resolve: fromPackageJSON},
	{Name: "angular.json", Integrations: []string{"angular"}, Resolve: fromAngularJSON},
	{Name: "i18next-parser.config.json", Integrations: []string{"i18next"}, Resolve: fromI18nextParser},
	{Name: "locale directory", Resolve: fromDirectory},
}

// ResolveI18n searches Sources in order and returns the first match along
// with the name of the source it came from.
func (c *Config) ResolveI18n() (I18n, string, error) {
	for _, s := range Sources {
		if c.Integration != "" && len(s.Integrations) > 0 && !contains(s.Integrations, c.Integration) {
			continue
		}
		found, err := s.Resolve(c)
		if err != nil {
			return I18n{}, "", err
		}
		if found == nil {
			continue
		}
		if found.DefaultLocale == "" {
			found.DefaultLocale = DefaultLocale
		}
		return *found, s.Name, nil
	}
	return I18n{}, "", &ConfigurationError{
		Field: "i18n",
		Msg:   "no i18n configuration found: add an i18n block with locales and defaultLocale to your lin config",
	}
}

func fromLinConfig(c *Config) (*I18n, error) {
	if c.I18n == nil || len(c.I18n.Locales) == 0 {
		return nil, nil
	}
	i := *c.I18n
	return &i, nil
}

func fromI18nFile(c *Config) (*I18n, error) {
	for _, name := range []string{"i18n.config.json", "i18n.config.yaml", ".i18nrc", ".i18nrc.json", ".i18nrc.yaml"} {
		path := c.Path(name)
		data, err := readOptional(path)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		var i I18n
		if err := yaml.Unmarshal(data, &i); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if len(i.Locales) > 0 {
			return &i, nil
		}
	}
	return nil, nil
}

type i18nBlock struct {
	I18n *I18n `json:"i18n"`
}

func fromPackageJSON(c *Config) (*I18n, error) {
	var pkg struct {
		Lin   *i18nBlock `json:"lin"`
		Remix *i18nBlock `json:"remix"`
		Qwik  *i18nBlock `json:"qwik"`
	}
	ok, err := readJSON(c.Path("package.json"), &pkg)
	if !ok || err != nil {
		return nil, err
	}
	for _, block := range []*i18nBlock{pkg.Remix, pkg.Qwik} {
		if block != nil && block.I18n != nil {
			i := *block.I18n
			if i.DefaultLocale == "" {
				i.DefaultLocale = "en"
			}
			return &i, nil
		}
	}
	if pkg.Lin != nil && pkg.Lin.I18n != nil && len(pkg.Lin.I18n.Locales) > 0 {
		return pkg.Lin.I18n, nil
	}
	return nil, nil
}

func fromAngularJSON(c *Config) (*I18n, error) {
	var ng struct {
		DefaultProject string `json:"defaultProject"`
		Projects       map[string]struct {
			I18n *struct {
				SourceLocale json.RawMessage            `json:"sourceLocale"`
				Locales      map[string]json.RawMessage `json:"locales"`
			} `json:"i18n"`
		} `json:"projects"`
	}
	ok, err := readJSON(c.Path("angular.json"), &ng)
	if !ok || err != nil {
		return nil, err
	}
	name := ng.DefaultProject
	if name == "" {
		names := make([]string, 0, len(ng.Projects))
		for n := range ng.Projects {
			names = append(names, n)
		}
		sort.Strings(names)
		if len(names) == 0 {
			return nil, nil
		}
		name = names[0]
	}
	project, ok := ng.Projects[name]
	if !ok || project.I18n == nil {
		return nil, nil
	}

	i := &I18n{DefaultLocale: angularLocale(project.I18n.SourceLocale)}
	for l := range project.I18n.Locales {
		i.Locales = append(i.Locales, l)
	}
	sort.Strings(i.Locales)
	if i.DefaultLocale != "" && !contains(i.Locales, i.DefaultLocale) {
		i.Locales = append([]string{i.DefaultLocale}, i.Locales...)
	}
	return i, nil
}

// angularLocale reads sourceLocale, which is either a string or
// {"code": "..."}.
func angularLocale(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Code string `json:"code"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Code
	}
	return ""
}

func fromI18nextParser(c *Config) (*I18n, error) {
	var i I18n
	ok, err := readJSON(c.Path("i18next-parser.config.json"), &i)
	if !ok || err != nil || len(i.Locales) == 0 {
		return nil, err
	}
	return &i, nil
}

// fromDirectory lists the locale files of the JSON adapter. The default is
// en-US, then en, then the first locale found.
func fromDirectory(c *Config) (*I18n, error) {
	if c.Adapters.JSON.Directory == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(c.Path(c.Adapters.JSON.Directory))
	if err != nil {
		return nil, nil
	}
	var locales []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if lang := strings.TrimSuffix(name, ".json"); isLocaleCode(lang) {
			locales = append(locales, lang)
		}
	}
	if len(locales) == 0 {
		return nil, nil
	}
	sort.Strings(locales)

	def := locales[0]
	for _, candidate := range []string{DefaultLocale, "en"} {
		if contains(locales, candidate) {
			def = candidate
			break
		}
	}
	return &I18n{Locales: locales, DefaultLocale: def}, nil
}

// isLocaleCode checks if a file name looks like a locale: en, pt-BR, zh_CN,
// sr-Latn-RS.
func isLocaleCode(s string) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	if len(parts) == 0 || len(parts[0]) < 2 || len(parts[0]) > 3 {
		return false
	}
	for _, r := range parts[0] {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, p := range parts[1:] {
		if len(p) < 2 || len(p) > 8 {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := readOptional(path)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
