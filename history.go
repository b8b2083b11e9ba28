package main

import (
	"errors"
	"strings"

	"github.com/rettend/lin/console"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/undo"
	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// undo (restore the files of the last write)
// ---------------------------------------------------------------------------

func newUndoCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: i18n.T("Revert the last change lin made"),
		Long: `Restore the files written by the last sync, check --fix, add, del
or edit. Files the change created are removed again.

History is kept in .lin/undo/ in the project root. Only the last 20
changes are kept.

Examples:
  lin undo          Revert the last change
  lin undo list     Show the recorded changes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			h, err := undo.Load(a.cfg.Cwd)
			if err != nil {
				return err
			}
			e, err := h.Restore()
			if errors.Is(err, undo.ErrEmpty) {
				a.con.Log(console.Info, "%s", i18n.T("Nothing to undo."))
				return nil
			}
			if err != nil {
				return err
			}
			a.con.Log(console.Success, "%s", i18n.N("Restored `%d` file.", "Restored `%d` files.", len(e.Files), len(e.Files)))
			for _, f := range e.Files {
				if f.Absent {
					a.con.Log(console.Note, i18n.T("`%s` *(removed)*"), f.Path)
				} else {
					a.con.Log(console.Note, "`%s`", f.Path)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(newUndoListCmd(g))
	return cmd
}

func newUndoListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show the recorded changes, newest first"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			h, err := undo.Load(a.cfg.Cwd)
			if err != nil {
				return err
			}
			entries := h.List()
			if len(entries) == 0 {
				a.con.Log(console.Info, "%s", i18n.T("Nothing to undo."))
				return nil
			}
			for _, e := range entries {
				paths := make([]string, len(e.Files))
				for i, f := range e.Files {
					paths[i] = f.Path
				}
				a.con.Log(console.Note, "**%s** %s  %s", e.ID[:min(8, len(e.ID))], e.Time.Local().Format("2006-01-02 15:04:05"), strings.Join(paths, ", "))
			}
			return nil
		},
	}
}
