package cmd

import (
	"fmt"
	"strings"

	"tapis/internal/cli"
	tapisctx "tapis/internal/context"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// contextShowOptions holds the flag values of the context show command.
type contextShowOptions struct {
	Keys       []string
	Sets       []string
	Precedence string
	Output     cli.CommandFlags
}

var contextShowOpts contextShowOptions

// contextCmd represents the context command group
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Inspect the cached session context",
	Long: `Inspect the context assembled from the cached client file and sessions file.

Context Configuration:
  Client file:   <cache-dir>/current
  Sessions file: <cache-dir>/config.json

Precedence (highest to lowest):
  1. --set values
  2. sessions file (or client file with --precedence client)
  3. client file (or sessions file with --precedence client)`,
	Args: cobra.NoArgs,
	RunE: runContextShow,
}

// contextShowCmd prints the bootstrapped context
var contextShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"get", "describe"},
	Short:   "Show the resolved context",
	Long: `Resolve the requested keys against the cache files and print the result.

Without --key or --set, the default keys are shown: tenantid, baseurl,
username, access_token, refresh_token, apikey and apisecret.

Examples:
  tapis context show
  tapis context show --key tenantid --key baseurl
  tapis context show --set username=jdoe --precedence client
  tapis context show -o json`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cobra.NoFileCompletions,
	RunE:              runContextShow,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.AddCommand(contextShowCmd)

	for _, c := range []*cobra.Command{contextCmd, contextShowCmd} {
		c.Flags().StringArrayVarP(&contextShowOpts.Keys, "key", "k", nil, "Key to resolve (repeatable)")
		c.Flags().StringArrayVar(&contextShowOpts.Sets, "set", nil, "Explicit key=value that is never overwritten (repeatable)")
		c.Flags().StringVar(&contextShowOpts.Precedence, "precedence", string(tapisctx.PrecedenceSessions), "Which cache file wins: sessions or client")
		cli.RegisterOutputFlags(c, &contextShowOpts.Output)
		_ = c.RegisterFlagCompletionFunc("key", completeContextKeys)
		_ = c.RegisterFlagCompletionFunc("precedence", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{string(tapisctx.PrecedenceSessions), string(tapisctx.PrecedenceClient)}, cobra.ShellCompDirectiveNoFileComp
		})
	}
}

// completeContextKeys provides shell completion for context keys
func completeContextKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	keys := make([]string, len(tapisctx.AllowedKeys))
	for i, k := range tapisctx.AllowedKeys {
		keys[i] = string(k)
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func runContextShow(cmd *cobra.Command, args []string) error {
	format, err := contextShowOpts.Output.Format()
	if err != nil {
		return err
	}

	precedence, err := tapisctx.ParsePrecedence(contextShowOpts.Precedence)
	if err != nil {
		return err
	}

	requested, err := buildRequest(contextShowOpts.Keys, contextShowOpts.Sets)
	if err != nil {
		return err
	}

	storage, err := newStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize cache storage: %w", err)
	}

	resolved, err := storage.Bootstrap(precedence, requested)
	if err != nil {
		return fmt.Errorf("failed to resolve context: %w", err)
	}

	return printContext(cmd, format, contextShowOpts.Output.NoHeaders, resolved)
}

// buildRequest turns --key and --set values into a requested context.
// Keys are validated against the allow-list.
func buildRequest(keys, sets []string) (tapisctx.Context, error) {
	requested := make(tapisctx.Context, len(keys)+len(sets))

	for _, name := range keys {
		k, err := tapisctx.ParseKey(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if _, ok := requested[k]; !ok {
			requested[k] = nil
		}
	}

	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, &tapisctx.ValidationError{Field: "set", Value: pair, Reason: "expected key=value"}
		}
		k, err := tapisctx.ParseKey(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		requested.Set(k, value)
	}

	return requested, nil
}

// printContext renders a resolved context in the selected format. Tables
// list keys in allow-list order and show null values as <none>.
func printContext(cmd *cobra.Command, format cli.OutputFormat, noHeaders bool, c tapisctx.Context) error {
	out := cmd.OutOrStdout()
	if format != cli.OutputFormatTable {
		return cli.WriteStructured(out, format, c.ToMap())
	}

	tw := cli.NewPlainTable(out, noHeaders, "key", "value")
	for _, k := range c.Keys() {
		value, ok := c.Get(k)
		if !ok {
			value = cli.NullValue()
		}
		tw.AppendRow(table.Row{string(k), value})
	}
	tw.Render()
	return nil
}
