package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rettend/lin/cache"
	"github.com/rettend/lin/config"
	"github.com/rettend/lin/console"
	"github.com/rettend/lin/engine"
	"github.com/rettend/lin/guard"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/registry"
	"github.com/rettend/lin/settings"
	"github.com/rettend/lin/translate"
	"github.com/rettend/lin/undo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// newProvider builds the model client. Tests replace it with a fake.
var newProvider = translate.NewProvider

// app is the state shared by one command invocation.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	i18n   config.I18n
	source string
	con    *console.Console
}

// loadConfig resolves the configuration without touching locale files.
func loadConfig(cmd *cobra.Command, g *globalFlags, l *llmFlags) (*app, error) {
	o := g.overrides()
	if l != nil {
		l.apply(&o)
	}
	cfg, err := config.Load(o)
	if err != nil {
		return nil, err
	}
	return &app{
		ctx: cmd.Context(),
		cfg: cfg,
		con: console.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin()),
	}, nil
}

// loadApp resolves the configuration and the project's locales.
func loadApp(cmd *cobra.Command, g *globalFlags, l *llmFlags) (*app, error) {
	a, err := loadConfig(cmd, g, l)
	if err != nil {
		return nil, err
	}
	a.i18n, a.source, err = a.cfg.ResolveI18n()
	if err != nil {
		return nil, err
	}
	a.debug("Locales from %s: %s (default %s)", a.source, strings.Join(a.i18n.Locales, ", "), a.i18n.DefaultLocale)
	return a, nil
}

func (a *app) debug(format string, args ...any) {
	if a.cfg.Debug {
		a.con.Log(console.Info, format, args...)
	}
}

func (a *app) confirm(question string) (bool, error) {
	return a.con.Confirm(question, false)
}

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

// scope returns the locales selected with --locale, or every locale.
func (a *app) scope() ([]string, error) {
	if len(a.cfg.Locale) == 0 {
		return a.i18n.Locales, nil
	}
	return config.NormalizeLocales(a.cfg.Locale, a.i18n)
}

// targets returns the given locales normalized, or every locale but the
// default one. Locales named with --locale count when no arguments are
// given.
func (a *app) targets(args []string) ([]string, error) {
	if len(args) == 0 && len(a.cfg.Locale) > 0 {
		args = a.cfg.Locale
	}
	if len(args) == 0 {
		return a.i18n.Targets(), nil
	}
	locales, err := config.NormalizeLocales(args, a.i18n)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, l := range locales {
		if l != a.i18n.DefaultLocale {
			out = append(out, l)
		}
	}
	return out, nil
}

// groups splits locales into rounds of limits.locale.
func (a *app) groups(locales []string) [][]string {
	size := a.cfg.Limits.Locale
	if size <= 0 {
		size = len(locales)
	}
	var out [][]string
	for len(locales) > 0 {
		n := min(size, len(locales))
		out = append(out, locales[:n])
		locales = locales[n:]
	}
	return out
}

// adapters returns the configured adapters that support cmd.
func (a *app) adapters(cmd engine.Command) ([]engine.Adapter, error) {
	kinds, err := a.cfg.AdapterKinds()
	if err != nil {
		return nil, err
	}
	var out []engine.Adapter
	for _, k := range kinds {
		ad, err := engine.For(k)
		if err != nil {
			return nil, err
		}
		if ad.Supports(cmd) {
			out = append(out, ad)
		} else {
			a.debug("The %s adapter does not support %s, skipping", k, cmd)
		}
	}
	return out, nil
}

// jsonOnly reports whether the JSON adapter is configured for cmd. add, del
// and edit work on JSON locale files only.
func (a *app) jsonOnly(cmd engine.Command) (bool, error) {
	ads, err := a.adapters(cmd)
	if err != nil {
		return false, err
	}
	for _, ad := range ads {
		if ad.Kind() == engine.JSON {
			return true, nil
		}
	}
	a.con.Log(console.Warning, i18n.T("No adapter configured for `%s`."), cmd)
	return false, nil
}

// ---------------------------------------------------------------------------
// Locale files
// ---------------------------------------------------------------------------

// readDefault loads the default locale tree. It must exist.
func (a *app) readDefault() (*localejson.Tree, error) {
	return localejson.ReadFile(a.cfg.LocalePath(a.i18n.DefaultLocale))
}

// readLocale loads a locale tree, treating a missing file as empty.
func (a *app) readLocale(locale string) (*localejson.Tree, bool, error) {
	t, err := localejson.ReadFile(a.cfg.LocalePath(locale))
	if localejson.IsNotFound(err) {
		return localejson.New(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// refs loads the reference locales of the with setting for a group.
// Unreadable files are skipped.
func (a *app) refs(group []string) (map[string]*localejson.Tree, error) {
	names, err := config.ContextLocales(a.cfg.With, group, a.i18n)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*localejson.Tree, len(names))
	for _, l := range names {
		t, err := localejson.ReadFile(a.cfg.LocalePath(l))
		if err != nil {
			a.debug("Skipping context locale %s: %v", l, err)
			continue
		}
		out[l] = t
	}
	return out, nil
}

// suggest prints the keys under a dotted prefix of the default locale.
func (a *app) suggest(def *localejson.Tree, prefix string) {
	keys, ok := localejson.ChildKeys(def, prefix)
	if !ok || len(keys) == 0 {
		a.con.Log(console.Warning, i18n.T("No keys found under `%s`."), prefix)
		return
	}
	base := strings.TrimSuffix(prefix, ".")
	a.con.Log(console.Info, i18n.T("Keys under `%s`:"), prefix)
	for _, k := range keys {
		if base != "" {
			k = base + "." + k
		}
		a.con.Log(console.Note, "`%s`", k)
	}
}

// ---------------------------------------------------------------------------
// Translation
// ---------------------------------------------------------------------------

// translator returns a translator for the configured provider. The returned
// function closes the registry client.
func (a *app) translator(silent bool) (*translate.Translator, func(), error) {
	opts := a.cfg.Options
	p, err := newProvider(a.ctx, translate.SettingsFor(opts, opts.ResolveAPIKey(settings.LookupAPIKey)))
	if err != nil {
		return nil, nil, err
	}

	done := func() {}
	var modes translate.ModeResolver
	if a.cfg.Registry.BaseURL != "" {
		reg, err := a.openRegistry()
		if err != nil {
			a.debug("Model registry unavailable: %v", err)
		} else {
			modes = reg.ModelMode
			done = func() { reg.Close() }
		}
	}

	var bar *progressbar.ProgressBar
	t, err := translate.New(p, translate.Options{
		Provider:      opts.Provider,
		Model:         opts.Model,
		DefaultLocale: a.i18n.DefaultLocale,
		Context:       a.cfg.Context,
		Mode:          opts.Mode,
		Limits:        translate.Limits{Keys: a.cfg.Limits.Key, Chars: a.cfg.Limits.Char},
		Sampling:      translate.SamplingFor(opts),
		Modes:         modes,
		OnProgress: func(locale string, n, total int) {
			if silent {
				return
			}
			if bar == nil {
				bar = a.con.Progress(total, i18n.T("Translating"))
			}
			bar.Describe(fmt.Sprintf("[cyan]%s[reset]", locale))
			_ = bar.Set(n)
			if n == total {
				_ = bar.Finish()
			}
		},
		OnLog: func(format string, args ...any) {
			a.con.Log(console.Info, format, args...)
		},
		Debug: a.cfg.Debug,
	})
	if err != nil {
		done()
		return nil, nil, err
	}
	return t, done, nil
}

// openRegistry opens a catalog client on the configured cache.
func (a *app) openRegistry() (*registry.Client, error) {
	r := a.cfg.Registry
	o := cache.Options{Backend: r.Cache, RedisURL: r.RedisURL, TTL: r.TTL}
	if r.Cache == "file" {
		dir, err := settings.CacheDir()
		if err != nil {
			return nil, err
		}
		o.Dir = dir
	}
	c, err := cache.Open(a.ctx, o)
	if err != nil {
		return nil, err
	}
	return registry.Open(registry.Options{BaseURL: r.BaseURL, Cache: c}), nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

type write struct {
	path string
	data []byte
}

// renderJSON serializes a locale tree through the JSON adapter.
func renderJSON(path string, t *localejson.Tree) (write, error) {
	ad, err := engine.For(engine.JSON)
	if err != nil {
		return write{}, err
	}
	r, err := ad.Render(path, nil, t)
	if err != nil {
		return write{}, err
	}
	return write{path: path, data: []byte(r.Text)}, nil
}

// guard asks before a write that removes keys. It reports whether the
// caller may write.
func (a *app) guard(before, after guard.Counts, silent bool) (bool, error) {
	ok, err := guard.Check(before, after, silent, a.confirm, a.con.Out)
	if err != nil {
		return false, err
	}
	if !ok {
		a.con.Log(console.Warning, "%s", i18n.T("Cancelled, nothing was written."))
	}
	return ok, nil
}

// commit snapshots the files for undo and writes them.
func (a *app) commit(writes []write) error {
	if len(writes) == 0 {
		return nil
	}
	if a.cfg.Undo {
		paths := make([]string, len(writes))
		for i, w := range writes {
			paths[i] = w.path
		}
		h, err := undo.Load(a.cfg.Cwd)
		if err != nil {
			return err
		}
		if _, err := h.Save(paths); err != nil {
			return err
		}
	}
	for _, w := range writes {
		if err := localejson.WriteBytes(w.path, w.data); err != nil {
			return err
		}
		a.debug("Wrote %s", w.path)
	}
	return nil
}
