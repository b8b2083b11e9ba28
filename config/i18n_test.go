package config

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolveI18nSources(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		integration string
		want        I18n
		source      string
	}{
		{
			name: "lin config block wins",
			files: map[string]string{
				"lin.yaml":           "i18n:\n  locales: [en-US, de-DE]\n  defaultLocale: en-US\n",
				"i18n.config.json":   `{"locales": ["fr"], "defaultLocale": "fr"}`,
				"locales/hu-HU.json": "{}",
			},
			want:   I18n{Locales: []string{"en-US", "de-DE"}, DefaultLocale: "en-US"},
			source: "lin config",
		},
		{
			name:   "i18n config file",
			files:  map[string]string{"i18n.config.json": `{"locales": ["fr", "it"], "defaultLocale": "fr"}`},
			want:   I18n{Locales: []string{"fr", "it"}, DefaultLocale: "fr"},
			source: "i18n.config.json",
		},
		{
			name:   "i18nrc without default",
			files:  map[string]string{".i18nrc.yaml": "locales: [en-US, ja-JP]\n"},
			want:   I18n{Locales: []string{"en-US", "ja-JP"}, DefaultLocale: "en-US"},
			source: "i18n.config.json",
		},
		{
			name:   "package.json remix",
			files:  map[string]string{"package.json": `{"name": "app", "remix": {"i18n": {"locales": ["en", "es"]}}}`},
			want:   I18n{Locales: []string{"en", "es"}, DefaultLocale: "en"},
			source: "package.json",
		},
		{
			name: "angular project",
			files: map[string]string{"angular.json": `{
  "projects": {
    "web": {"i18n": {"sourceLocale": {"code": "en-US"}, "locales": {"hu": "src/hu.xlf", "de": "src/de.xlf"}}}
  }
}`},
			want:   I18n{Locales: []string{"en-US", "de", "hu"}, DefaultLocale: "en-US"},
			source: "angular.json",
		},
		{
			name:   "locale directory",
			files:  map[string]string{"locales/en.json": "{}", "locales/pt-BR.json": "{}", "locales/notes.json": "{}"},
			want:   I18n{Locales: []string{"en", "pt-BR"}, DefaultLocale: "en"},
			source: "locale directory",
		},
		{
			name: "integration skips unrelated sources",
			files: map[string]string{
				"angular.json":    `{"projects": {"web": {"i18n": {"sourceLocale": "en", "locales": {"fr": "x"}}}}}`,
				"locales/de.json": "{}",
			},
			integration: "remix",
			want:        I18n{Locales: []string{"de"}, DefaultLocale: "de"},
			source:      "locale directory",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}
			cfg, err := Load(Overrides{Cwd: str(dir)})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			cfg.Integration = tt.integration
			got, source, err := cfg.ResolveI18n()
			if err != nil {
				t.Fatalf("ResolveI18n: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveI18n = %+v, want %+v", got, tt.want)
			}
			if source != tt.source {
				t.Errorf("source = %q, want %q", source, tt.source)
			}
		})
	}
}

func TestResolveI18nNotFound(t *testing.T) {
	cfg, err := Load(Overrides{Cwd: str(t.TempDir())})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = cfg.ResolveI18n()
	var ce *ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "i18n" {
		t.Fatalf("error = %v, want i18n ConfigurationError", err)
	}
}

func TestTargets(t *testing.T) {
	i := I18n{Locales: []string{"en-US", "de-DE", "hu-HU"}, DefaultLocale: "en-US"}
	if got := i.Targets(); !reflect.DeepEqual(got, []string{"de-DE", "hu-HU"}) {
		t.Errorf("Targets = %v", got)
	}
}

func TestNormalizeLocales(t *testing.T) {
	i := I18n{Locales: []string{"en-US", "en-GB", "hu-HU", "pt_BR"}, DefaultLocale: "en-US"}
	tests := []struct {
		args    []string
		want    []string
		wantErr bool
	}{
		{[]string{"hu-HU"}, []string{"hu-HU"}, false},
		{[]string{"hu_hu"}, []string{"hu-HU"}, false},
		{[]string{"pt-br"}, []string{"pt_BR"}, false},
		{[]string{"en"}, []string{"en-US", "en-GB"}, false},
		{[]string{"hu"}, []string{"hu-HU"}, false},
		{[]string{"def"}, []string{"en-US"}, false},
		{[]string{"all"}, []string{"en-US", "en-GB", "hu-HU", "pt_BR"}, false},
		{[]string{"hu-HU,en-US", "hu"}, []string{"hu-HU", "en-US"}, false},
		{[]string{"fr"}, nil, true},
		{[]string{"de-DE"}, nil, true},
	}
	for _, tt := range tests {
		got, err := NormalizeLocales(tt.args, i)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeLocales(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NormalizeLocales(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestContextLocales(t *testing.T) {
	i := I18n{Locales: []string{"en-US", "de-DE", "hu-HU"}, DefaultLocale: "en-US"}
	group := []string{"de-DE"}
	tests := []struct {
		with []string
		want []string
	}{
		{nil, nil},
		{[]string{"none"}, nil},
		{[]string{"def"}, []string{"en-US"}},
		{[]string{"tgt"}, []string{"de-DE"}},
		{[]string{"both"}, []string{"en-US", "de-DE"}},
		{[]string{"all"}, []string{"en-US", "de-DE", "hu-HU"}},
		{[]string{"hu"}, []string{"hu-HU"}},
	}
	for _, tt := range tests {
		got, err := ContextLocales(tt.with, group, i)
		if err != nil {
			t.Errorf("ContextLocales(%v): %v", tt.with, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ContextLocales(%v) = %v, want %v", tt.with, got, tt.want)
		}
	}
}
