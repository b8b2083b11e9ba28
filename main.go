// lin keeps the locale files of a project in sync with a language model.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rettend/lin/i18n"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errIssuesFound ends a check that found problems it was not asked to fix.
// main turns it into exit status 1 without printing anything else.
var errIssuesFound = errors.New("issues found")

var (
	warningTag = color.New(color.FgYellow).Sprint("[WARN]")
	errorTag   = color.New(color.FgRed).Sprint("[ERROR]")
)

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, warningTag+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, errorTag+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "lin",
		Short: i18n.T("Sync the translations of your locale files with an LLM"),
		Long: `lin keeps i18n locale files in sync using large language models.

It finds keys that are missing from your locales, translates them in
schema-constrained batches and merges the results back without touching
existing translations. Markdown and MDX documents are translated block by
block through per-locale snapshots.

Commands:
  check       Find missing and unused keys, sort and fix locale files
  sync        Translate missing keys of every locale
  add         Add a key to every locale, translated
  del         Remove keys from every locale
  edit        Change the value of a key
  models      List the models of the LLM registry
  undo        Revert the last change lin made
  auth        Manage stored API keys

Providers:
  openai, anthropic, google, xai, mistral, groq, cerebras, azure`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g.register(root.PersistentFlags())

	root.AddCommand(
		newCheckCmd(g),
		newSyncCmd(g),
		newAddCmd(g),
		newDelCmd(g),
		newEditCmd(g),
		newModelsCmd(g),
		newUndoCmd(g),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}
	stop()
	if !errors.Is(err, errIssuesFound) {
		if errors.Is(err, context.Canceled) {
			logWarning("%s", i18n.T("Interrupted, nothing was written."))
		} else {
			logError("%v", err)
		}
	}
	os.Exit(1)
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "lin version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}
