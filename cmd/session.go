package cmd

import (
	"fmt"
	"time"

	"tapis/internal/cli"
	tapisctx "tapis/internal/context"
	"tapis/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// sessionShowOptions holds the flag values of the session show command.
type sessionShowOptions struct {
	TenantID   string
	Username   string
	ClientName string
	Output     cli.CommandFlags
}

var sessionShowOpts sessionShowOptions

// sessionCmd represents the session command group
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect stored sessions",
	Long: `Inspect the sessions stored in <cache-dir>/config.json.

Examples:
  tapis session show
  tapis session show --tenant-id tacc.prod --username jdoe --client-name my-client`,
}

// sessionShowCmd prints one stored session
var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored session",
	Long: `Show a stored session and whether its access token is still valid.

When --client-name names a current session for the given tenant and user,
that session is shown. When any of --tenant-id, --username or --client-name
is missing, the first current session is shown. Otherwise the session is
looked up by tenant, user and client.

Examples:
  tapis session show
  tapis session show --tenant-id tacc.prod --username jdoe --client-name my-client -o yaml`,
	Args: cobra.NoArgs,
	RunE: runSessionShow,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)

	sessionShowCmd.Flags().StringVar(&sessionShowOpts.TenantID, "tenant-id", "", "Tenant id of the session")
	sessionShowCmd.Flags().StringVar(&sessionShowOpts.Username, "username", "", "Username of the session")
	sessionShowCmd.Flags().StringVar(&sessionShowOpts.ClientName, "client-name", "", "OAuth client name of the session")
	cli.RegisterOutputFlags(sessionShowCmd, &sessionShowOpts.Output)
}

// sessionDetails represents the output structure for session show
type sessionDetails struct {
	ClientName  string         `json:"client_name" yaml:"client_name"`
	TokenStatus string         `json:"token_status" yaml:"token_status"`
	Expiry      *time.Time     `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	Context     map[string]any `json:"context" yaml:"context"`
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	format, err := sessionShowOpts.Output.Format()
	if err != nil {
		return err
	}

	storage, err := newStorage()
	if err != nil {
		return fmt.Errorf("failed to initialize cache storage: %w", err)
	}

	name, session, err := storage.LookupSession(sessionShowOpts.TenantID, sessionShowOpts.Username, sessionShowOpts.ClientName)
	if err != nil {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	status, expiry := tokenStatus(session)
	if status == tokenStatusExpired && expiry != nil {
		logging.Warn("Session", "Access token of %s expired at %s", name, expiry.Format(time.RFC3339))
	}

	out := cmd.OutOrStdout()
	if format != cli.OutputFormatTable {
		return cli.WriteStructured(out, format, sessionDetails{
			ClientName:  name,
			TokenStatus: status,
			Expiry:      expiry,
			Context:     session.ToMap(),
		})
	}

	tw := cli.NewKeyValueTable(out)
	tw.AppendRow(table.Row{"client", name})
	tw.AppendRow(table.Row{"token", colorTokenStatus(status)})
	if expiry != nil {
		tw.AppendRow(table.Row{"expiry", expiry.Format(time.RFC3339)})
	}
	tw.AppendSeparator()
	for _, k := range session.Keys() {
		value, ok := session.Get(k)
		if !ok {
			value = cli.NullValue()
		}
		tw.AppendRow(table.Row{string(k), value})
	}
	tw.Render()
	return nil
}

const (
	tokenStatusNone    = "none"
	tokenStatusValid   = "valid"
	tokenStatusExpired = "expired"
)

// tokenStatus reports whether the session's cached access token is still
// usable, using the oauth2 expiry margin. The expiry is returned for display
// when the session has one. No refresh is attempted.
func tokenStatus(session tapisctx.Context) (string, *time.Time) {
	tok := session.Token()
	if tok == nil {
		return tokenStatusNone, nil
	}

	var expiry *time.Time
	if !tok.Expiry.IsZero() {
		e := tok.Expiry
		expiry = &e
	}
	if tok.Valid() {
		return tokenStatusValid, expiry
	}
	return tokenStatusExpired, expiry
}

func colorTokenStatus(status string) string {
	switch status {
	case tokenStatusValid:
		return text.FgGreen.Sprint("Valid")
	case tokenStatusExpired:
		return text.FgYellow.Sprint("Expired (log in again)")
	default:
		return text.FgHiBlack.Sprint("No access token")
	}
}
