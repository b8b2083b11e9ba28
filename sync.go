package main

import (
	"strings"

	"github.com/rettend/lin/config"
	"github.com/rettend/lin/console"
	"github.com/rettend/lin/engine"
	"github.com/rettend/lin/guard"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/merge"
	"github.com/rettend/lin/translate"
	"github.com/spf13/cobra"
)

type syncFlags struct {
	force  bool
	silent bool
	llm    llmFlags
}

func newSyncCmd(g *globalFlags) *cobra.Command {
	f := &syncFlags{}

	cmd := &cobra.Command{
		Use:   "sync [locales...]",
		Short: i18n.T("Translate missing keys of every locale"),
		Long: `Translate the keys missing from each locale and merge them in.

Existing translations are never overwritten. Locales default to every
locale except the default one; "all", "def" and bare languages ("pt")
are accepted.

Examples:
  lin sync                    Sync every locale
  lin sync de fr              Sync German and French
  lin sync --force ja         Retranslate the whole Japanese file
  lin sync -m gpt-4o-mini     Use another model or a preset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, g, &f.llm)
			if err != nil {
				return err
			}
			return a.runSync(args, f)
		},
	}

	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Retranslate whole locales, replacing existing values")
	cmd.Flags().BoolVarP(&f.silent, "silent", "S", false, "Minimal, script-friendly output")
	f.llm.register(cmd.Flags())
	registerLLMCompletions(cmd)

	return cmd
}

func registerLLMCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Providers, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("mode", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("integration", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return config.Integrations, cobra.ShellCompDirectiveNoFileComp
	})
}

func (a *app) runSync(args []string, f *syncFlags) error {
	locales, err := a.targets(args)
	if err != nil {
		return err
	}
	ads, err := a.adapters(engine.Sync)
	if err != nil {
		return err
	}

	tr, done, err := a.translator(f.silent)
	if err != nil {
		return err
	}
	defer done()

	for _, ad := range ads {
		err := a.con.Section(strings.ToUpper(string(ad.Kind())), func() error {
			switch ad.Kind() {
			case engine.JSON:
				return a.syncJSON(tr, locales, f)
			case engine.Markdown:
				return a.syncMarkdown(tr, ad, locales, f)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

func (a *app) syncJSON(tr *translate.Translator, locales []string, f *syncFlags) error {
	def, err := a.readDefault()
	if err != nil {
		return err
	}
	defFlat := localejson.Flatten(def)

	before := guard.Counts{}
	after := guard.Counts{}
	var writes []write

	for _, group := range a.groups(locales) {
		refs, err := a.refs(group)
		if err != nil {
			return err
		}
		if len(refs) > 0 && !f.silent {
			a.con.Log(console.Info, i18n.T("With: %s"), bolded(sortedKeys(refs)))
		}

		jobs := make(map[string]*localejson.Flat)
		existing := make(map[string]*localejson.Tree)
		for _, l := range group {
			t, found, err := a.readLocale(l)
			if err != nil {
				return err
			}
			if !found && !f.silent {
				a.con.Log(console.Warning, i18n.T("File not found for locale **%s**. Creating a new one."), l)
			}
			existing[l] = t

			if f.force {
				jobs[l] = defFlat
				before[l] = localejson.CountKeys(t)
				if !f.silent {
					a.con.Log(console.Info, i18n.T("Force syncing entire JSON for locale: **%s**"), l)
				}
				continue
			}
			if localejson.ShapeMatches(def, t) {
				if !f.silent {
					a.con.Log(console.Info, i18n.T("Skipped: **%s**"), l)
				}
				continue
			}
			if missing := localejson.Flatten(localejson.FindMissingKeys(def, t)); missing.Len() > 0 {
				jobs[l] = missing
				before[l] = localejson.CountKeys(t)
			}
		}

		if len(group) > 0 && !f.silent {
			a.con.Log(console.Note, i18n.T("Keys: %d"), defFlat.Len())
		}
		if len(jobs) == 0 {
			continue
		}
		a.debug("To sync: %s", strings.Join(sortedKeys(jobs), ", "))

		results, err := tr.Translate(a.ctx, jobs, refs)
		if err != nil {
			return err
		}
		for _, l := range sortedKeys(results) {
			translated := results[l].Nest()
			var final *localejson.Tree
			if f.force {
				final = translated
			} else {
				final = merge.MissingTranslations(existing[l], translated)
			}
			final = a.sortConfigured(final, def)
			after[l] = localejson.CountKeys(final)

			w, err := renderJSON(a.cfg.LocalePath(l), final)
			if err != nil {
				return err
			}
			writes = append(writes, w)
		}
	}

	ok, err := a.guard(before, after, f.silent)
	if err != nil || !ok {
		return err
	}
	if len(writes) == 0 {
		if f.silent {
			a.con.Print("All locales are up to date.")
		} else {
			a.con.Log(console.Success, "%s", i18n.T("All locales are up to date."))
		}
		return nil
	}
	if err := a.commit(writes); err != nil {
		return err
	}
	if !f.silent {
		a.con.Log(console.Success, "%s", i18n.N("Synced `%d` locale.", "Synced `%d` locales.", len(writes), len(writes)))
	}
	return nil
}

// sortConfigured applies adapters.json.sort to a tree about to be written.
func (a *app) sortConfigured(t, def *localejson.Tree) *localejson.Tree {
	if a.cfg.Adapters.JSON.Sort == "" {
		return t
	}
	return sortTree(t, def, a.cfg.Adapters.JSON.Sort)
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

func (a *app) syncMarkdown(tr *translate.Translator, ad engine.Adapter, locales []string, f *syncFlags) error {
	docs, err := a.markdownDocs()
	if err != nil || len(docs) == 0 {
		return err
	}
	current, err := extractUnits(ad, docs)
	if err != nil {
		return err
	}
	previous, err := a.readSnapshot(a.i18n.DefaultLocale)
	if err != nil {
		return err
	}

	writes := []write{a.snapshotWrite(a.i18n.DefaultLocale, current)}
	synced := 0
	for _, l := range locales {
		target, err := a.readSnapshot(l)
		if err != nil {
			return err
		}

		// Blocks edited since the last sync are translated again.
		for _, k := range current.Keys() {
			old, ok := previous.Get(k)
			now, _ := current.Get(k)
			if ok && old != now {
				target.Delete(k)
			}
		}

		missing := localejson.NewFlat()
		for _, k := range current.Keys() {
			v, _ := current.Get(k)
			if f.force {
				missing.Set(k, v)
				continue
			}
			if tv, ok := target.Get(k); !ok || (tv == "" && v != "") {
				missing.Set(k, v)
			}
		}

		if missing.Len() > 0 {
			results, err := tr.Translate(a.ctx, map[string]*localejson.Flat{l: missing}, nil)
			if err != nil {
				return err
			}
			if f.force {
				for _, k := range missing.Keys() {
					target.Delete(k)
				}
			}
			target = merge.MissingFlat(target, results[l])
			writes = append(writes, a.snapshotWrite(l, target))
			synced++
		} else if !f.silent {
			a.con.Log(console.Info, i18n.T("Markdown for **%s** is up to date."), l)
		}

		docsOut, err := a.renderDocs(ad, docs, l, target, missing.Len() == 0)
		if err != nil {
			return err
		}
		writes = append(writes, docsOut...)
	}

	if err := a.commit(writes); err != nil {
		return err
	}
	if !f.silent {
		a.con.Log(console.Success, "%s", i18n.T("Markdown content synced for all locales."))
	}
	a.debug("Translated markdown for %d locales", synced)
	return nil
}
