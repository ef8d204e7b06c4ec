package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-donor-portal/auth"
	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/internal/config"
	"github.com/jrsteele09/go-donor-portal/internal/logging"
	"github.com/jrsteele09/go-donor-portal/kvstore"
	"github.com/jrsteele09/go-donor-portal/tokenstore"
	"github.com/spf13/cobra"
)

const sessionFile = "session.json"

// cli holds the flags and the session opened for one invocation
type cli struct {
	home    string
	apiURL  string
	timeout time.Duration
	verbose bool

	tokens  *tokenstore.Store
	api     *backend.Client
	session *auth.Session
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "donorctl",
		Short: "Command line client for the donor portal",
		Long: `donorctl signs in to the donor platform and calls it with the stored session.

The session token is kept in $DONORCTL_HOME/session.json (default ~/.donorctl)
for 7 days, or 30 days with --remember.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd)
		},
	}

	cfg, err := config.New()
	defaultAPI, defaultTimeout := "http://localhost:5000", 10*time.Second
	if err == nil {
		defaultAPI, defaultTimeout = cfg.GetAPIBaseURL(), cfg.GetAPITimeout()
	}

	rootCmd.PersistentFlags().StringVar(&c.home, "home", defaultHome(), "Directory holding the session file (or set DONORCTL_HOME)")
	rootCmd.PersistentFlags().StringVar(&c.apiURL, "api", defaultAPI, "Base URL of the donor platform API (or set API_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", defaultTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newStatusCmd(c),
		newWhoamiCmd(c),
		newCanCmd(c),
		newProfileCmd(c),
		newHistoryCmd(c),
	)
	return rootCmd
}

// open hydrates the session from the session file
func (c *cli) open(cmd *cobra.Command) error {
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	logging.Setup("DEV", level)

	store, err := kvstore.NewFileStore(filepath.Join(c.home, sessionFile))
	if err != nil {
		return err
	}
	c.tokens = tokenstore.New(store)
	c.api = backend.New(c.apiURL, backend.WithTimeout(c.timeout))

	c.session, err = auth.New(c.tokens, c.api)
	if err != nil {
		return err
	}
	c.session.Initialize()
	return nil
}

func defaultHome() string {
	if home := os.Getenv("DONORCTL_HOME"); home != "" {
		return home
	}
	if userHome, err := os.UserHomeDir(); err == nil {
		return filepath.Join(userHome, ".donorctl")
	}
	return ".donorctl"
}
