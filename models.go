package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/rettend/lin/console"
	"github.com/rettend/lin/i18n"
	"github.com/rettend/lin/registry"
	"github.com/spf13/cobra"
)

func newModelsCmd(g *globalFlags) *cobra.Command {
	var (
		providers  []string
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "models [providers...]",
		Short: i18n.T("List the models of the LLM registry"),
		Long: `List the models known to the LLM registry, grouped by provider,
with their IQ and speed scores.

Examples:
  lin models
  lin models openai anthropic
  lin models --clear-cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			return a.runModels(append(providers, args...), clearCache)
		},
	}

	cmd.Flags().StringArrayVarP(&providers, "provider", "p", nil, "Only list models of this provider (repeatable)")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Clear the LLM registry cache")

	return cmd
}

func (a *app) runModels(providers []string, clearCache bool) error {
	reg, err := a.openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	if clearCache {
		if err := reg.ClearCache(a.ctx); err != nil {
			return err
		}
		a.con.Log(console.Result, "%s", i18n.T("LLM registry cache cleared."))
		return nil
	}

	models, err := reg.SearchModels(a.ctx, registry.Query{Providers: providers, Status: a.cfg.Registry.Status})
	if err != nil {
		return err
	}
	if len(models) == 0 {
		a.con.Log(console.Warning, "%s", i18n.T("No models found."))
		return nil
	}

	var order []string
	byProvider := make(map[string][]registry.Model)
	width := 0
	for _, m := range models {
		if _, ok := byProvider[m.Provider]; !ok {
			order = append(order, m.Provider)
		}
		byProvider[m.Provider] = append(byProvider[m.Provider], m)
		width = max(width, modelWidth(m))
	}

	title := i18n.T("Available Models:")
	header := "`" + title + "`" + strings.Repeat(" ", max(0, width-utf8.RuneCountInString(title))+2) + fmt.Sprintf("%-8s%-6s", "IQ", "Speed")
	a.con.Print("%s", header)

	iq := color.New(color.FgMagenta).SprintFunc()
	speed := color.New(color.FgCyan).SprintFunc()
	for _, p := range order {
		a.con.Print("  `%s`", p)
		for _, m := range byProvider[p] {
			var attrs []string
			if d := scoreDots(m.IQ, iq); d != "" {
				attrs = append(attrs, d)
			}
			if d := scoreDots(m.Speed, speed); d != "" {
				attrs = append(attrs, d)
			}
			padding := strings.Repeat(" ", width-modelWidth(m))
			a.con.Print("    - **%s**: %s%s  %s", m.Alias, m.Value, padding, strings.Join(attrs, "  "))
		}
	}
	return nil
}

// modelWidth is the printed length of a model line without markup.
func modelWidth(m registry.Model) int {
	return utf8.RuneCountInString(fmt.Sprintf("    - %s: %s", m.Alias, m.Value))
}

// scoreDots renders a 0-5 score as ●●●○○ followed by the number. Zero means
// the registry has no score.
func scoreDots(score int, paint func(a ...any) string) string {
	if score <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < 5; i++ {
		if i < score {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return paint(fmt.Sprintf("%s %d", b.String(), score))
}
