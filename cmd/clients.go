package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tapis/internal/cli"
	"tapis/internal/clients"
	tapisctx "tapis/internal/context"
	"tapis/internal/credentials"
	"tapis/pkg/logging"
	pstrings "tapis/pkg/strings"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// clientsListTimeout bounds the registry request.
const clientsListTimeout = 60 * time.Second

// clientsListOptions holds the flag values of the clients list command.
type clientsListOptions struct {
	TenantURL string
	Username  string
	Password  string
	Wide      bool
	Output    cli.CommandFlags
}

var (
	clientsListOpts clientsListOptions

	// newLister and newCredentialResolver are replaced in tests.
	newLister             = func() *clients.Lister { return clients.NewLister(clients.WithUserAgent("tapis/" + GetVersion())) }
	newCredentialResolver = func() *credentials.Resolver { return credentials.NewResolver() }
)

// clientsCmd represents the clients command group
var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage Tapis OAuth clients",
	Long: `Work with the OAuth clients registered on a Tapis tenant.

Examples:
  tapis clients list
  tapis clients list --tenant-url https://api.tacc.utexas.edu --username jdoe`,
}

// clientsListCmd lists the OAuth clients of a user
var clientsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List OAuth clients",
	Long: `List all OAuth clients registered to the user on a tenant.

The tenant URL and username default to the baseurl and username of the
cached session. The password is read from --password, TAPIS_PASSWORD, or
an interactive prompt.

Examples:
  tapis clients list
  tapis clients list -o json
  TAPIS_PASSWORD=... tapis clients list --username jdoe -q`,
	Args: cobra.NoArgs,
	RunE: runClientsList,
}

func init() {
	rootCmd.AddCommand(clientsCmd)
	clientsCmd.AddCommand(clientsListCmd)

	clientsListCmd.Flags().StringVar(&clientsListOpts.TenantURL, "tenant-url", "", "Base URL of the tenant (default: cached baseurl)")
	clientsListCmd.Flags().StringVar(&clientsListOpts.Username, "username", "", "API username (env: TAPIS_USERNAME)")
	clientsListCmd.Flags().StringVar(&clientsListOpts.Password, "password", "", "API password (env: TAPIS_PASSWORD)")
	clientsListCmd.Flags().BoolVar(&clientsListOpts.Wide, "wide", false, "Do not shorten long descriptions")
	cli.RegisterOutputFlags(clientsListCmd, &clientsListOpts.Output)
}

func runClientsList(cmd *cobra.Command, args []string) error {
	format, err := clientsListOpts.Output.Format()
	if err != nil {
		return err
	}

	tenantURL, username, err := resolveTenant(clientsListOpts.TenantURL, clientsListOpts.Username)
	if err != nil {
		return err
	}
	if tenantURL == "" {
		return fmt.Errorf("no tenant URL: pass --tenant-url or log in to create a cached session")
	}

	resolver := newCredentialResolver()
	username, err = resolver.Username(username)
	if err != nil {
		return err
	}
	password, err := resolver.Password(clientsListOpts.Password, clientsListOpts.Output.Quiet)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), clientsListTimeout)
	defer cancel()

	var s *spinner.Spinner
	if !clientsListOpts.Output.Quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		s.Suffix = " Fetching clients from " + tenantURL + "..."
		s.Start()
	}

	list, err := newLister().List(ctx, tenantURL, clients.Credentials{Username: username, Password: password})
	if s != nil {
		if err != nil {
			s.FinalMSG = text.FgRed.Sprint("Failed to list clients") + "\n"
		} else {
			s.FinalMSG = cli.FormatSuccess(fmt.Sprintf("Found %d clients", len(list))) + "\n"
		}
		s.Stop()
	}
	if err != nil {
		logging.Error("Clients", err, "Listing clients on %s failed", tenantURL)
		var clientErr *clients.ClientError
		if errors.As(err, &clientErr) && clientErr.IsUnauthorized() {
			return fmt.Errorf("%w (check the username and password of %s)", err, username)
		}
		return err
	}

	logging.Info("Clients", "Listed %d clients on %s", len(list), tenantURL)

	out := cmd.OutOrStdout()
	if format != cli.OutputFormatTable {
		return cli.WriteStructured(out, format, list)
	}

	if len(list) == 0 {
		if !clientsListOpts.Output.Quiet {
			fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No clients registered for %s on %s", username, tenantURL)))
		}
		return nil
	}

	maxLen := pstrings.DescriptionMaxLen
	if clientsListOpts.Wide {
		maxLen = 0
	}
	tw := cli.NewPlainTable(out, clientsListOpts.Output.NoHeaders, "name", "description")
	for _, c := range list {
		tw.AppendRow(table.Row{c.Name, pstrings.Description(c.Description, maxLen)})
	}
	tw.Render()
	return nil
}

// resolveTenant fills in the tenant URL and username from the cached
// session when they were not given explicitly. Explicit values always win,
// and a missing cache is not an error.
func resolveTenant(explicitURL, explicitUsername string) (string, string, error) {
	if explicitURL != "" && explicitUsername != "" {
		return explicitURL, explicitUsername, nil
	}

	storage, err := newStorage()
	if err != nil {
		return "", "", fmt.Errorf("failed to initialize cache storage: %w", err)
	}

	requested := tapisctx.Context{
		tapisctx.KeyBaseURL:  tapisctx.StringPtr(explicitURL),
		tapisctx.KeyUsername: tapisctx.StringPtr(explicitUsername),
	}
	resolved, err := storage.Bootstrap(tapisctx.PrecedenceSessions, requested)
	if err != nil {
		return "", "", fmt.Errorf("failed to load cached session: %w", err)
	}

	logging.Debug("Clients", "Resolved tenant %q and user %q from %s", resolved.Value(tapisctx.KeyBaseURL), resolved.Value(tapisctx.KeyUsername), storage.CacheDir())
	return resolved.Value(tapisctx.KeyBaseURL), resolved.Value(tapisctx.KeyUsername), nil
}
