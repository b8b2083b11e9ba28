// Package translate fills missing locale values with a language model.
//
// Work arrives as one flat key map per locale. Each map is split into
// batches bounded by key count and value length, and every batch becomes
// one schema-constrained request. Entries whose source value is empty are
// never sent; they come back as empty strings. Locales and batches run one
// after another in a fixed order so that dry runs are reproducible.
package translate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rettend/lin/config"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/merge"
)

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// ModeResolver looks up the preferred output mode of a model, usually from
// the model registry.
type ModeResolver func(ctx context.Context, provider, model string) (string, error)

// Options controls a translation run.
type Options struct {
	// Provider and Model identify the model for errors and mode lookup.
	Provider string
	Model    string
	// DefaultLocale is the language the source values are written in.
	DefaultLocale string
	// Context is free text from the user added to the system prompt.
	Context string
	// Mode is the configured output mode, used when Modes has no answer.
	Mode     string
	Limits   Limits
	Sampling Sampling
	Modes    ModeResolver
	// OnProgress is called after each batch.
	OnProgress func(locale string, done, total int)
	// OnLog receives debug output.
	OnLog func(format string, args ...any)
	Debug bool
}

func (o *Options) log(format string, args ...any) {
	if o.Debug && o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

// Translator runs translation requests against one provider.
type Translator struct {
	provider Provider
	opts     Options
}

// New checks the options and returns a translator. A missing provider or
// model is a configuration error.
func New(p Provider, opts Options) (*Translator, error) {
	if opts.Provider == "" || opts.Model == "" {
		return nil, &config.ConfigurationError{
			Field: "options",
			Msg:   fmt.Sprintf("provider or model missing in options (provider: %q, model: %q)", opts.Provider, opts.Model),
		}
	}
	if p == nil {
		return nil, errors.New("translate: nil provider")
	}
	return &Translator{provider: p, opts: opts}, nil
}

// ---------------------------------------------------------------------------
// Translation
// ---------------------------------------------------------------------------

// Translate returns, for every locale of jobs, a flat map with the same keys
// in the same order. refs are other locale trees passed to the model as
// reference.
//
// On error the result holds what was translated before the failing batch.
func (t *Translator) Translate(ctx context.Context, jobs map[string]*localejson.Flat, refs map[string]*localejson.Tree) (map[string]*localejson.Flat, error) {
	locales := make([]string, 0, len(jobs))
	for l := range jobs {
		locales = append(locales, l)
	}
	sort.Strings(locales)

	plan := make(map[string][]*localejson.Flat, len(locales))
	total := 0
	for _, l := range locales {
		plan[l] = Split(jobs[l], t.opts.Limits)
		total += len(plan[l])
	}

	system := systemPrompt(t.opts.DefaultLocale, t.opts.Context, refs)
	mode := ""
	out := make(map[string]*localejson.Flat, len(locales))
	done := 0

	for _, l := range locales {
		result := localejson.NewFlat()
		out[l] = result
		for _, batch := range plan[l] {
			if mode == "" && hasValues(batch) {
				mode = t.mode(ctx)
			}
			translated, err := t.batch(ctx, l, batch, system, mode)
			if err != nil {
				return out, err
			}
			for _, k := range batch.Keys() {
				v, _ := translated.Get(k)
				result.Set(k, v)
			}
			done++
			if t.opts.OnProgress != nil {
				t.opts.OnProgress(l, done, total)
			}
		}
	}
	return out, nil
}

// batch translates one batch of one locale. Empty source values skip the
// model and are merged back in as empty strings.
func (t *Translator) batch(ctx context.Context, locale string, batch *localejson.Flat, system, mode string) (*localejson.Flat, error) {
	send := localejson.NewFlat()
	passthrough := localejson.NewFlat()
	for _, k := range batch.Keys() {
		if v, _ := batch.Get(k); v != "" {
			send.Set(k, v)
		} else {
			passthrough.Set(k, "")
		}
	}
	if send.Len() == 0 {
		return passthrough, nil
	}

	keys := send.Keys()
	schema := wireSchema(locale, keys)
	req := Request{
		System:   system,
		User:     userPrompt(locale, send),
		Schema:   schema,
		Mode:     mode,
		Sampling: t.opts.Sampling,
	}
	t.opts.log("Translating %d keys for %s: %v", len(keys), locale, keys)

	body, err := t.provider.Generate(ctx, req)
	if err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ProviderError{Provider: t.opts.Provider, Model: t.opts.Model, Err: err}
	}
	t.opts.log("Response for %s: %s", locale, body)

	translated, err := decodeResponse(body, locale, keys, schema)
	if err != nil {
		return nil, err
	}
	return merge.MissingFlat(translated, passthrough), nil
}

// mode picks the output mode: the registry's answer first, then the
// configured mode, then auto. Lookup failures never abort a run.
func (t *Translator) mode(ctx context.Context) string {
	if t.opts.Modes != nil {
		m, err := t.opts.Modes(ctx, t.opts.Provider, t.opts.Model)
		if err != nil {
			t.opts.log("Model registry lookup failed: %v", err)
		} else if validMode(m) {
			return m
		}
	}
	if validMode(t.opts.Mode) {
		return t.opts.Mode
	}
	return config.ModeAuto
}

func validMode(m string) bool {
	for _, v := range config.Modes {
		if m == v {
			return true
		}
	}
	return false
}

func hasValues(f *localejson.Flat) bool {
	for _, k := range f.Keys() {
		if v, _ := f.Get(k); v != "" {
			return true
		}
	}
	return false
}
