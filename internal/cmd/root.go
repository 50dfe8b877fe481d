// Package cmd wires the session manager and resource clients into the
// jobtrack command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jobtrackapp/go-jobtrack-client/api"
	"github.com/jobtrackapp/go-jobtrack-client/applications"
	"github.com/jobtrackapp/go-jobtrack-client/internal/config"
	"github.com/jobtrackapp/go-jobtrack-client/session"
	"github.com/jobtrackapp/go-jobtrack-client/session/filestore"
	"github.com/jobtrackapp/go-jobtrack-client/support"
)

var rootCmd = &cobra.Command{
	Use:   "jobtrack",
	Short: "Track job applications from the terminal",
	Long: `jobtrack is a client for the JobTrack backend: sign in once and
manage your job applications, interview schedule, and dashboard
statistics without leaving the terminal.

The backend location is taken from JOBTRACK_API_URL (falling back to the
deployment origin in JOBTRACK_ORIGIN, then the local development
default). Credentials are kept under your user config directory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		displayBanner(a.cfg.GetAppName())
		return cmd.Help()
	},
}

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// app holds the dependencies shared by every command, built once per
// invocation.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	endpoints api.Endpoints
	manager   *session.Manager
	apps      *applications.Client
	support   *support.Client
}

func newApp() (*app, error) {
	// A .env next to the binary is a development convenience; absence is
	// not an error.
	_ = godotenv.Load()

	cfg := config.New()

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	endpoints := api.NewEndpoints(api.ResolveBaseURL(cfg))
	store := filestore.New(cfg.GetDataFolder())

	manager, err := session.NewManager(endpoints, store,
		session.WithLogger(logger),
		session.WithNavigator(func() {
			fmt.Println(`Signed out. Run "jobtrack login" to sign in again.`)
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] session manager")
	}

	appsClient, err := applications.NewClient(endpoints, manager)
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] applications client")
	}

	return &app{
		cfg:       cfg,
		log:       logger,
		endpoints: endpoints,
		manager:   manager,
		apps:      appsClient,
		support:   support.NewClient(endpoints),
	}, nil
}

// requireAuth restores the persisted session and refuses when it resolves
// anonymous, the CLI analog of redirecting to the login page.
func (a *app) requireAuth(ctx context.Context) error {
	a.manager.Initialize(ctx)
	if !a.manager.IsAuthenticated() {
		return errors.New(`not signed in, run "jobtrack login" first`)
	}
	return nil
}

func displayBanner(appName string) {
	banner := figure.NewFigure(appName, "cybermedium", true)
	banner.Print()
	fmt.Println()
}
