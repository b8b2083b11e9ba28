package main

import (
	"fmt"
	"strings"

	"github.com/rettend/lin/console"
	"github.com/rettend/lin/engine"
	"github.com/rettend/lin/guard"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/merge"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// add
// ---------------------------------------------------------------------------

type addFlags struct {
	force  bool
	silent bool
	llm    llmFlags
}

func newAddCmd(g *globalFlags) *cobra.Command {
	f := &addFlags{}

	cmd := &cobra.Command{
		Use:   "add <key> [translation...]",
		Short: i18n.T("Add a key to every locale, translated"),
		Long: `Add a key with its default-locale text and translate it into the
other locales.

A key ending in "." lists the keys under that prefix. Without a
translation, an existing key prints its value and a new key asks for the
text.

Examples:
  lin add nav.home Home
  lin add auth.login.title "Sign in to your account"
  lin add nav.                List the keys under nav
  lin add -f nav.home Start   Replace an existing key`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, g, &f.llm)
			if err != nil {
				return err
			}
			return a.runAdd(args[0], strings.Join(args[1:], " "), f)
		},
	}

	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "Replace the key where it already exists")
	cmd.Flags().BoolVarP(&f.silent, "silent", "s", false, "Do not ask before removing keys")
	f.llm.register(cmd.Flags())
	registerLLMCompletions(cmd)

	return cmd
}

func (a *app) runAdd(key, text string, f *addFlags) error {
	if ok, err := a.jsonOnly(engine.Add); !ok {
		return err
	}
	def, _, err := a.readLocale(a.i18n.DefaultLocale)
	if err != nil {
		return err
	}
	if strings.HasSuffix(key, ".") {
		a.suggest(def, key)
		return nil
	}

	if text == "" {
		ref := localejson.FindNestedKey(def, key)
		switch {
		case ref.Found && ref.Leaf:
			a.con.Log(console.Info, "**%s**: %s", key, ref.Value)
			return nil
		case ref.Found:
			a.suggest(def, key)
			return nil
		}
		text, err = a.con.Text(fmt.Sprintf(i18n.T("Text for `%s` in **%s**:"), key, a.i18n.DefaultLocale), "")
		if err != nil {
			return err
		}
		if text == "" {
			a.con.Log(console.Warning, "%s", i18n.T("No text given, nothing was added."))
			return nil
		}
	}

	locales, err := a.scope()
	if err != nil {
		return err
	}

	existing := make(map[string]*localejson.Tree)
	values := make(map[string]string)
	var pending []string
	for _, l := range locales {
		t, _, err := a.readLocale(l)
		if err != nil {
			return err
		}
		ref := localejson.FindNestedKey(t, key)
		if ref.Found && !ref.Leaf {
			a.con.Log(console.Warning, i18n.T("**%s** has an object at `%s`, skipping."), l, key)
			continue
		}
		if ref.Found && ref.Value != "" && !f.force {
			a.con.Log(console.Info, i18n.T("Key `%s` already exists in **%s**, skipping."), key, l)
			continue
		}
		existing[l] = t
		if l == a.i18n.DefaultLocale {
			values[l] = text
		} else {
			pending = append(pending, l)
		}
	}

	if len(pending) > 0 {
		tr, done, err := a.translator(f.silent)
		if err != nil {
			return err
		}
		defer done()

		for _, group := range a.groups(pending) {
			refs, err := a.refs(group)
			if err != nil {
				return err
			}
			jobs := make(map[string]*localejson.Flat, len(group))
			for _, l := range group {
				jobs[l] = localejson.FlatOf(key, text)
			}
			results, err := tr.Translate(a.ctx, jobs, refs)
			if err != nil {
				return err
			}
			for _, l := range group {
				values[l], _ = results[l].Get(key)
			}
		}
	}
	if len(values) == 0 {
		return nil
	}

	before := guard.Counts{}
	after := guard.Counts{}
	var writes []write
	var added []string
	for _, l := range locales {
		value, ok := values[l]
		if !ok {
			continue
		}
		t := existing[l]
		before[l] = localejson.CountKeys(t)
		if f.force {
			t = t.Clone()
			localejson.FindNestedKey(t, key).Delete()
		}
		final := a.sortConfigured(merge.MissingTranslations(t, localejson.FlatOf(key, value).Nest()), def)
		after[l] = localejson.CountKeys(final)

		w, err := renderJSON(a.cfg.LocalePath(l), final)
		if err != nil {
			return err
		}
		writes = append(writes, w)
		added = append(added, l)
	}

	ok, err := a.guard(before, after, f.silent)
	if err != nil || !ok {
		return err
	}
	if err := a.commit(writes); err != nil {
		return err
	}
	a.con.Log(console.Success, i18n.T("Added key `%s` to %s"), key, bolded(added))
	return nil
}

// ---------------------------------------------------------------------------
// del
// ---------------------------------------------------------------------------

func newDelCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "del <key...>",
		Aliases: []string{"rm"},
		Short:   i18n.T("Remove keys from every locale"),
		Long: `Remove one or more keys from every locale in scope. Objects left
empty are removed as well.

Examples:
  lin del nav.home
  lin del nav.home nav.about -l de`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, g, nil)
			if err != nil {
				return err
			}
			return a.runDel(args)
		},
	}
}

func (a *app) runDel(keys []string) error {
	if ok, err := a.jsonOnly(engine.Del); !ok {
		return err
	}
	def, _, err := a.readLocale(a.i18n.DefaultLocale)
	if err != nil {
		return err
	}
	if len(keys) == 1 && !localejson.FindNestedKey(def, keys[0]).Leaf {
		a.suggest(def, keys[0])
		return nil
	}

	locales, err := a.scope()
	if err != nil {
		return err
	}

	deleted := make(map[string][]string)
	skipped := make(map[string][]string)
	var writes []write
	for _, l := range locales {
		path := a.cfg.LocalePath(l)
		t, err := localejson.ReadFile(path)
		if localejson.IsNotFound(err) {
			for _, k := range keys {
				skipped[k] = append(skipped[k], l)
			}
			continue
		}
		if err != nil {
			return err
		}

		changed := false
		for _, k := range keys {
			if localejson.FindNestedKey(t, k).Delete() {
				deleted[k] = append(deleted[k], l)
				changed = true
			} else {
				skipped[k] = append(skipped[k], l)
			}
		}
		if !changed {
			continue
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
	for _, k := range keys {
		if len(deleted[k]) > 0 {
			a.con.Log(console.Success, i18n.T("Deleted key `%s` from %s"), k, bolded(deleted[k]))
		}
		if len(skipped[k]) > 0 {
			a.con.Log(console.Note, i18n.T("Key `%s` not found in %s, skipped"), k, bolded(skipped[k]))
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// edit
// ---------------------------------------------------------------------------

func newEditCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <key> <value...>",
		Short: i18n.T("Change the value of a key"),
		Long: `Set a key that already exists to a new value in every locale in scope.

Examples:
  lin edit nav.home "Start page" -l def
  lin edit nav.home Startseite -l de`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, g, nil)
			if err != nil {
				return err
			}
			return a.runEdit(args[0], strings.Join(args[1:], " "))
		},
	}
}

func (a *app) runEdit(key, value string) error {
	if ok, err := a.jsonOnly(engine.Edit); !ok {
		return err
	}
	def, _, err := a.readLocale(a.i18n.DefaultLocale)
	if err != nil {
		return err
	}
	if !localejson.FindNestedKey(def, key).Leaf {
		a.suggest(def, key)
		return nil
	}

	locales, err := a.scope()
	if err != nil {
		return err
	}

	var writes []write
	var edited []string
	for _, l := range locales {
		path := a.cfg.LocalePath(l)
		t, err := localejson.ReadFile(path)
		if localejson.IsNotFound(err) {
			a.con.Log(console.Info, i18n.T("File not found for locale **%s**, skipping."), l)
			continue
		}
		if err != nil {
			return err
		}
		if !localejson.FindNestedKey(t, key).Leaf {
			a.con.Log(console.Info, i18n.T("Key `%s` not found in **%s**, skipping."), key, l)
			continue
		}
		t.SetPath(key, value)
		w, err := renderJSON(path, t)
		if err != nil {
			return err
		}
		writes = append(writes, w)
		edited = append(edited, l)
	}

	if err := a.commit(writes); err != nil {
		return err
	}
	if len(edited) > 0 {
		a.con.Log(console.Success, i18n.T("Edited key `%s` in %s"), key, bolded(edited))
	}
	return nil
}
