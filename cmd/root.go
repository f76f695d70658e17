package cmd

import (
	"errors"
	"fmt"
	"os"

	"tapis/internal/cli"
	"tapis/internal/clients"
	tapisctx "tapis/internal/context"
	"tapis/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, request failed).
	ExitCodeError = 1
	// ExitCodeValidation indicates an invalid argument such as an unknown context key.
	ExitCodeValidation = 2
	// ExitCodeNotFound indicates a missing cache file or session.
	ExitCodeNotFound = 3
	// ExitCodeRequestFailed indicates the tenant could not be reached or rejected the request.
	ExitCodeRequestFailed = 4
)

var (
	// cacheDir overrides the cache directory for every command.
	cacheDir string
	// debug enables debug logging on stderr.
	debug bool
	// logLevel sets the log level when --debug is not given.
	logLevel string
)

// rootCmd represents the base command for the tapis application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tapis",
	Short: "Work with Tapis OAuth clients and cached sessions",
	Long: `tapis lists the OAuth clients registered on a Tapis tenant and shows
the session context cached by earlier logins.

The cache lives in ~/.agave unless --cache-dir, TAPIS_CACHE_DIR or
AGAVE_CACHE_DIR point elsewhere.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	// Errors are printed by Execute.
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return &tapisctx.ValidationError{Field: "log-level", Value: logLevel, Reason: "expected debug, info, warn or error"}
		}
		if debug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tapis version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var validationErr *tapisctx.ValidationError
	if errors.As(err, &validationErr) {
		return ExitCodeValidation
	}

	var notFoundErr *tapisctx.NotFoundError
	if errors.As(err, &notFoundErr) {
		return ExitCodeNotFound
	}

	var clientErr *clients.ClientError
	if errors.As(err, &clientErr) {
		return ExitCodeRequestFailed
	}

	return ExitCodeError
}

// newStorage returns the cache storage selected by --cache-dir or the
// environment.
func newStorage() (*tapisctx.Storage, error) {
	if cacheDir != "" {
		return tapisctx.NewStorageWithPath(cacheDir), nil
	}
	return tapisctx.NewStorage()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache directory (env: TAPIS_CACHE_DIR, default ~/.agave)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newVersionCmd())
}
