package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rettend/lin/config"
	"github.com/rettend/lin/console"
	"github.com/rettend/lin/engine"
	"github.com/rettend/lin/extract"
	"github.com/rettend/lin/guard"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/langmeta"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/merge"
	"github.com/spf13/cobra"
)

type checkFlags struct {
	silent bool
	sort   string
	keys   bool
	fix    bool
	prune  bool
	info   bool
}

func newCheckCmd(g *globalFlags) *cobra.Command {
	f := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: i18n.T("Find missing and unused keys"),
		Long: `Validate locale files against the default locale and the codebase.

Without flags, source files matching parser.input are scanned for
translation keys; keys missing from the default locale and keys no code
uses are reported. Markdown snapshots are compared with the documents.

Examples:
  lin check                 Report missing and unused keys
  lin check --fix           Add missing keys to the default locale
  lin check --prune         Remove unused keys from every locale
  lin check --keys          Compare every locale with the default one
  lin check --sort def      Order keys like the default locale
  lin check --info          Show the configuration and key counts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sort") {
				if _, err := config.ParseSort(f.sort); err != nil {
					return err
				}
			}
			a, err := loadApp(cmd, g, nil)
			if err != nil {
				return err
			}
			return a.runCheck(f)
		},
	}

	cmd.Flags().BoolVarP(&f.silent, "silent", "S", false, "Minimal, script-friendly output")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "", "Sort locales alphabetically (abc) or like the default locale (def)")
	cmd.Flags().BoolVarP(&f.keys, "keys", "k", false, "Compare the keys of every locale with the default locale")
	cmd.Flags().BoolVarP(&f.fix, "fix", "f", false, "Add missing keys instead of failing")
	cmd.Flags().BoolVarP(&f.prune, "prune", "u", false, "Remove unused keys from all locales")
	cmd.Flags().BoolVarP(&f.info, "info", "i", false, "Show the configuration and locale key counts")

	_ = cmd.RegisterFlagCompletionFunc("sort", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"abc\talphabetically", "def\tlike the default locale"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (a *app) runCheck(f *checkFlags) error {
	ads, err := a.adapters(engine.Check)
	if err != nil {
		return err
	}

	issues := false
	for _, ad := range ads {
		var found bool
		err := a.con.Section(strings.ToUpper(string(ad.Kind())), func() error {
			var err error
			switch ad.Kind() {
			case engine.JSON:
				found, err = a.checkJSON(f)
			case engine.Markdown:
				found, err = a.checkMarkdown(ad, f)
			}
			return err
		})
		if err != nil {
			return err
		}
		issues = issues || found
	}
	if issues {
		return errIssuesFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

// checkJSON reports whether unresolved issues remain.
func (a *app) checkJSON(f *checkFlags) (bool, error) {
	locales, err := a.scope()
	if err != nil {
		return false, err
	}
	def, _, err := a.readLocale(a.i18n.DefaultLocale)
	if err != nil {
		return false, err
	}

	switch {
	case f.info:
		a.printInfo(def, locales)
		return false, nil
	case f.sort != "":
		return false, a.sortLocales(def, locales, f.sort)
	case f.keys:
		return a.checkLocaleKeys(def, locales, f)
	}
	return a.checkUsage(def, f)
}

func (a *app) printInfo(def *localejson.Tree, locales []string) {
	if a.cfg.File == "" {
		a.con.Log(console.Error, "%s", i18n.T("Lin config not found"))
	} else {
		a.con.Log(console.Note, i18n.T("Lin config: `%s`"), a.cfg.File)
	}
	a.con.Log(console.Note, i18n.T("I18n config: `%s`"), a.source)
	a.con.Log(console.Note, i18n.T("Provider: `%s`"), a.cfg.Options.Provider)
	a.con.Log(console.Note, i18n.T("Model: `%s`"), a.cfg.Options.Model)
	if t := a.cfg.Options.Temperature; t != nil {
		a.con.Log(console.Note, i18n.T("Temperature: `%g`"), *t)
	}
	a.con.Log(console.Note, i18n.T("Keys: `%d`"), localejson.CountKeys(def))

	parts := make([]string, 0, len(locales))
	for _, l := range locales {
		t, err := localejson.ReadFile(a.cfg.LocalePath(l))
		if err != nil {
			parts = append(parts, color.RedString("%s", l)+" ("+string(console.Error)+")")
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s** *%s* (`%d`)", l, langmeta.Resolve(l).Name, localejson.CountKeys(t)))
	}
	a.con.Log(console.Note, "%s %s", i18n.N("Locale (`%d`):", "Locales (`%d`):", len(locales), len(locales)), strings.Join(parts, " "))
}

func (a *app) sortLocales(def *localejson.Tree, locales []string, order string) error {
	if order == config.SortABC {
		a.con.Log(console.Info, "%s", i18n.T("Sorting locales **alphabetically**"))
	} else {
		a.con.Log(console.Info, "%s", i18n.T("Sorting locales according to **default locale**"))
	}

	var writes []write
	var sorted []string
	for _, l := range locales {
		path := a.cfg.LocalePath(l)
		t, err := localejson.ReadFile(path)
		if localejson.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if !localejson.ShapeMatches(def, t) {
			kind, diff := "missing", localejson.FindMissingKeys(def, t)
			if localejson.CountKeys(t) > localejson.CountKeys(def) {
				kind, diff = "extra", localejson.FindMissingKeys(t, def)
			}
			a.con.Log(console.Warning, i18n.T("Locale **%s** is not up to date. Skipping... *(found %s: %s)*"),
				l, kind, strings.Join(localejson.AllKeys(diff), ", "))
			continue
		}
		w, err := renderJSON(path, sortTree(t, def, order))
		if err != nil {
			return err
		}
		writes = append(writes, w)
		sorted = append(sorted, l)
	}
	if err := a.commit(writes); err != nil {
		return err
	}
	if len(sorted) > 0 {
		a.con.Log(console.Success, i18n.T("Sorted locales: %s"), bolded(sorted))
	}
	return nil
}

// sortTree orders t alphabetically or like def.
func sortTree(t, def *localejson.Tree, order string) *localejson.Tree {
	if order == config.SortDef {
		return merge.SortKeys(t, def)
	}
	return merge.SortKeys(t, nil)
}

// checkLocaleKeys compares every locale with the default one.
func (a *app) checkLocaleKeys(def *localejson.Tree, locales []string, f *checkFlags) (bool, error) {
	missing := make(map[string]*localejson.Tree)
	var order []string
	for _, l := range locales {
		t, found, err := a.readLocale(l)
		if err != nil {
			return false, err
		}
		if !found {
			a.con.Log(console.Error, i18n.T("File not found for locale **%s**."), l)
		}
		if m := localejson.FindMissingKeys(def, t); localejson.CountKeys(m) > 0 {
			missing[l] = m
			order = append(order, l)
		}
	}

	if len(order) == 0 {
		a.con.Log(console.Success, "%s", i18n.T("All locales are up to date."))
		return false, nil
	}

	for _, l := range order {
		keys := localejson.AllKeys(missing[l])
		a.con.Log(console.Warning, i18n.T("Locale **%s** is missing `%d` keys"), l, len(keys))
		if !f.fix {
			a.con.Log(console.Note, i18n.T("Samples: %s"), sample(keys, 10))
		}
	}
	if !f.fix {
		a.con.Log(console.Error, "%s", i18n.T("Missing keys detected. Run with `--fix` to add empty keys."))
		return true, nil
	}

	before := guard.Counts{}
	after := guard.Counts{}
	var writes []write
	for _, l := range order {
		existing, _, err := a.readLocale(l)
		if err != nil {
			return false, err
		}
		empty := localejson.NewFlat()
		for _, k := range localejson.AllKeys(missing[l]) {
			empty.Set(k, "")
		}
		merged := merge.MissingTranslations(existing, empty.Nest())
		before[l] = localejson.CountKeys(existing)
		after[l] = localejson.CountKeys(merged)

		w, err := renderJSON(a.cfg.LocalePath(l), merged)
		if err != nil {
			return false, err
		}
		writes = append(writes, w)
	}

	ok, err := a.guard(before, after, f.silent)
	if err != nil || !ok {
		return false, err
	}
	if err := a.commit(writes); err != nil {
		return false, err
	}
	a.con.Log(console.Success, "%s", i18n.T("Missing keys added successfully."))
	return false, nil
}

// checkUsage compares the default locale with the keys used in code.
func (a *app) checkUsage(def *localejson.Tree, f *checkFlags) (bool, error) {
	res, err := extract.Scan(a.cfg.Cwd, a.cfg.Parser.Input)
	if err != nil {
		return false, err
	}
	a.debug("Scanned %d files, found %d keys", len(res.Files), len(res.Keys))

	defined := localejson.Flatten(def)
	used := make(map[string]bool, len(res.Keys))
	var missing []extract.Key
	for _, k := range res.Keys {
		used[k.Key] = true
		if !defined.Has(k.Key) {
			missing = append(missing, k)
		}
	}
	var unused []string
	for _, k := range defined.Keys() {
		if !used[k] {
			unused = append(unused, k)
		}
	}

	missingNames := make([]string, len(missing))
	for i, k := range missing {
		missingNames[i] = k.Key
	}

	if len(missing) > 0 {
		if f.silent {
			if !f.fix {
				a.con.Print("Missing keys: %d", len(missing))
				a.con.Print("Samples: %s", strings.ReplaceAll(sample(missingNames, 10), "`", ""))
			}
		} else {
			a.con.Log(console.Warning, i18n.T("Found `%d` missing keys in default locale"), len(missing))
			a.con.Log(console.Note, i18n.T("Samples: %s"), sample(missingNames, 10))
		}
	}
	if len(unused) > 0 {
		if f.silent {
			if !f.prune {
				a.con.Print("Unused keys: %d", len(unused))
				a.con.Print("Samples: %s", strings.ReplaceAll(sample(unused, 10), "`", ""))
			}
		} else {
			a.con.Log(console.Warning, i18n.T("Found `%d` unused keys in default locale"), len(unused))
			a.con.Log(console.Note, i18n.T("Samples: %s"), sample(unused, 10))
		}
	}

	if len(missing) == 0 && len(unused) == 0 {
		if !f.silent {
			a.con.Log(console.Success, "%s", i18n.T("All keys are in sync."))
		}
		return false, nil
	}

	if f.fix && len(missing) > 0 {
		values := localejson.NewFlat()
		for _, k := range missing {
			values.Set(k.Key, k.DefaultValue)
		}
		merged := merge.MissingTranslations(def, values.Nest())
		w, err := renderJSON(a.cfg.LocalePath(a.i18n.DefaultLocale), merged)
		if err != nil {
			return false, err
		}
		if err := a.commit([]write{w}); err != nil {
			return false, err
		}
		if f.silent {
			a.con.Print("Fixed %d missing keys.", len(missing))
		} else {
			a.con.Log(console.Success, "%s", i18n.T("Missing keys added."))
		}
	}

	if f.prune && len(unused) > 0 {
		if err := a.pruneKeys(unused, f.silent); err != nil {
			return false, err
		}
	}

	if !f.fix && !f.prune {
		if f.silent {
			a.con.Print("\nKey issues detected. Run with --fix to add missing keys or --prune to delete them.")
		} else {
			a.con.Log(console.Info, "%s", i18n.T("Key issues detected. Run with `--fix` to add missing keys or `--prune` to delete them."))
		}
		return true, nil
	}
	return false, nil
}

// pruneKeys removes keys from every locale after confirmation.
func (a *app) pruneKeys(keys []string, silent bool) error {
	if !silent {
		ok, err := a.confirm(fmt.Sprintf(i18n.T("This will remove `%d` unused keys from all locales. Continue?"), len(keys)))
		if err != nil {
			return err
		}
		if !ok {
			a.con.Log(console.Warning, "%s", i18n.T("Cancelled, nothing was written."))
			return nil
		}
	}

	var writes []write
	for _, l := range a.i18n.Locales {
		path := a.cfg.LocalePath(l)
		t, err := localejson.ReadFile(path)
		if localejson.IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		for _, k := range keys {
			localejson.FindNestedKey(t, k).Delete()
		}
		localejson.CleanupEmptyObjects(t)
		w, err := renderJSON(path, t)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	if err := a.commit(writes); err != nil {
		return err
	}
	if silent {
		a.con.Print("Removed %d unused keys.", len(keys))
	} else {
		a.con.Log(console.Success, "%s", i18n.T("Unused keys removed."))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

func (a *app) checkMarkdown(ad engine.Adapter, f *checkFlags) (bool, error) {
	docs, err := a.markdownDocs()
	if err != nil || len(docs) == 0 {
		return false, err
	}
	current, err := extractUnits(ad, docs)
	if err != nil {
		return false, err
	}
	source, err := a.readSnapshot(a.i18n.DefaultLocale)
	if err != nil {
		a.con.Log(console.Error, i18n.T("Could not parse source snapshot: %s"), a.cfg.SnapshotPath(a.i18n.DefaultLocale))
		return true, nil
	}

	newBlocks := current.Missing(source)
	unusedBlocks := source.Missing(current)
	targets := a.i18n.Targets()

	snapshots := make(map[string]*localejson.Flat, len(targets))
	for _, l := range targets {
		s, err := a.readSnapshot(l)
		if err != nil {
			return false, err
		}
		snapshots[l] = s
	}

	var writes []write
	modified := false

	if f.fix && newBlocks.Len() > 0 {
		modified = true
		for _, k := range newBlocks.Keys() {
			v, _ := newBlocks.Get(k)
			source.Set(k, v)
		}
		if !f.silent {
			a.con.Log(console.Success, i18n.T("Added `%d` new content blocks to the default snapshot."), newBlocks.Len())
		}
	}
	if f.prune && unusedBlocks.Len() > 0 {
		modified = true
		for _, k := range unusedBlocks.Keys() {
			source.Delete(k)
		}
		if !f.silent {
			a.con.Log(console.Success, i18n.T("Removed `%d` unused keys from all markdown snapshots."), unusedBlocks.Len())
		}
	}
	if modified {
		writes = append(writes, a.snapshotWrite(a.i18n.DefaultLocale, source))
	}

	sourceIssues := (newBlocks.Len() > 0 && !f.fix) || (unusedBlocks.Len() > 0 && !f.prune)
	if sourceIssues {
		if !f.silent {
			if newBlocks.Len() > 0 && !f.fix {
				a.con.Log(console.Warning, i18n.T("Found `%d` new content blocks in source files not present in the default snapshot."), newBlocks.Len())
				a.con.Log(console.Note, i18n.T("Samples: %s"), sample(newBlocks.Keys(), 5))
			}
			if unusedBlocks.Len() > 0 && !f.prune {
				a.con.Log(console.Warning, i18n.T("Found `%d` unused keys in default snapshot (content removed from source files)."), unusedBlocks.Len())
				a.con.Log(console.Note, i18n.T("Samples: %s"), sample(unusedBlocks.Keys(), 5))
			}
			a.con.Log(console.Info, "%s", i18n.T("Run with `--fix` to add missing content or `--prune` to remove unused content from snapshots."))
		}
		return true, a.commit(writes)
	}
	if !modified && !f.silent {
		a.con.Log(console.Success, "%s", i18n.T("Markdown source snapshot is up to date."))
	}

	issues := false
	for _, l := range targets {
		target := snapshots[l]
		missing := source.Missing(target)
		unused := target.Missing(source)
		if missing.Len() > 0 || unused.Len() > 0 {
			issues = true
		}

		changed := false
		if f.fix && missing.Len() > 0 {
			for _, k := range missing.Keys() {
				target.Set(k, "")
			}
			changed = true
			if !f.silent {
				a.con.Log(console.Success, i18n.T("Added `%d` missing keys to **%s** markdown snapshot."), missing.Len(), l)
			}
		}
		if f.prune && unused.Len() > 0 {
			for _, k := range unused.Keys() {
				target.Delete(k)
			}
			changed = true
			if !f.silent {
				a.con.Log(console.Success, i18n.T("Removed `%d` unused keys from **%s** markdown snapshot."), unused.Len(), l)
			}
		}
		if changed {
			writes = append(writes, a.snapshotWrite(l, target))
			continue
		}
		if modified || f.silent {
			continue
		}
		switch {
		case missing.Len() == 0 && unused.Len() == 0:
			a.con.Log(console.Success, i18n.T("Markdown for **%s** is up to date."), l)
		default:
			if missing.Len() > 0 {
				a.con.Log(console.Warning, i18n.T("Markdown for **%s** is missing `%d` keys."), l, missing.Len())
			}
			if unused.Len() > 0 {
				a.con.Log(console.Warning, i18n.T("Markdown for **%s** has `%d` unused keys."), l, unused.Len())
			}
		}
	}

	if err := a.commit(writes); err != nil {
		return false, err
	}
	if issues && !f.fix && !f.prune {
		if !f.silent {
			a.con.Log(console.Info, "%s", i18n.T("Run with `--fix` to add missing translations or `--prune` to remove unused ones."))
		}
		return true, nil
	}
	return false, nil
}
