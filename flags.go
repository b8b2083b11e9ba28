package main

import (
	"github.com/rettend/lin/config"
	"github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalFlags struct {
	cwd     string
	debug   bool
	undo    bool
	adapter []string
	locale  []string

	fs *pflag.FlagSet
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	g.fs = fs
	fs.StringVarP(&g.cwd, "cwd", "c", "", "Project directory (default: current directory)")
	fs.BoolVarP(&g.debug, "debug", "d", false, "Print the keys sent to the model and its raw replies")
	fs.StringSliceVarP(&g.adapter, "adapter", "a", nil, "Adapters to run: all, json, markdown")
	fs.StringSliceVarP(&g.locale, "locale", "l", nil, "Locales to work on (repeatable, \"all\" or \"def\")")
	fs.BoolVar(&g.undo, "undo", true, "Record undo history before writing (--undo=false disables it)")
}

// overrides turns the flags given on the command line into config
// overrides. Flags left at their defaults do not override the config file.
func (g *globalFlags) overrides() config.Overrides {
	var o config.Overrides
	if g.fs == nil {
		return o
	}
	if g.fs.Changed("cwd") {
		o.Cwd = &g.cwd
	}
	if g.fs.Changed("debug") {
		o.Debug = &g.debug
	}
	if g.fs.Changed("undo") {
		o.Undo = &g.undo
	}
	o.Adapter = g.adapter
	o.Locale = g.locale
	return o
}

// ---------------------------------------------------------------------------
// LLM flags
// ---------------------------------------------------------------------------

type llmFlags struct {
	context     string
	integration string
	provider    string
	model       string
	mode        string
	apiKey      string
	temperature string
	limitLocale string
	limitKey    string
	limitChar   string
	with        []string

	fs *pflag.FlagSet
}

func (l *llmFlags) register(fs *pflag.FlagSet) {
	l.fs = fs
	fs.StringVarP(&l.context, "context", "C", "", "Project context added to the prompt")
	fs.StringVarP(&l.integration, "integration", "i", "", "Framework to read the i18n setup from")
	fs.StringVarP(&l.provider, "provider", "p", "", "Model provider: openai, anthropic, google, xai, mistral, groq, cerebras, azure")
	fs.StringVarP(&l.model, "model", "m", "", "Model name or preset")
	fs.StringVar(&l.mode, "mode", "", "Output mode: auto, json, tool")
	fs.StringVar(&l.apiKey, "api-key", "", "API key (default: provider env var, LIN_API_KEY, or stored key)")
	fs.StringVarP(&l.temperature, "temperature", "t", "", "Sampling temperature")
	fs.StringVar(&l.limitLocale, "limit.locale", "", "Locales translated per round")
	fs.StringVar(&l.limitKey, "limit.key", "", "Maximum keys per request")
	fs.StringVar(&l.limitChar, "limit.char", "", "Maximum characters per request")
	fs.StringSliceVarP(&l.with, "with", "w", nil, "Reference locales: none, def, tgt, both, all or a locale list")
}

// apply copies the given LLM flags onto o.
func (l *llmFlags) apply(o *config.Overrides) {
	if l.fs == nil {
		return
	}
	for _, f := range []struct {
		name string
		dst  **string
		val  *string
	}{
		{"context", &o.Context, &l.context},
		{"integration", &o.Integration, &l.integration},
		{"provider", &o.Provider, &l.provider},
		{"model", &o.Model, &l.model},
		{"mode", &o.Mode, &l.mode},
		{"api-key", &o.APIKey, &l.apiKey},
		{"temperature", &o.Temperature, &l.temperature},
		{"limit.locale", &o.LimitLocale, &l.limitLocale},
		{"limit.key", &o.LimitKey, &l.limitKey},
		{"limit.char", &o.LimitChar, &l.limitChar},
	} {
		if l.fs.Changed(f.name) {
			*f.dst = f.val
		}
	}
	o.With = l.with
}
