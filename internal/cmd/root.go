package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/numberskills/nsadmin/internal/api"
	"github.com/numberskills/nsadmin/internal/config"
	"github.com/numberskills/nsadmin/internal/identity"
	"github.com/numberskills/nsadmin/internal/session"
)

var (
	rootCmd = &cobra.Command{
		Use:           "nsadmin",
		Short:         "Numberskills monitoring platform admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initApp(cmd)
		},
	}

	cfgFile        string
	activeProfile  string
	overrideAPI    string
	overrideFormat string
	debugEnabled   bool

	appOnce sync.Once
	app     *App
)

var version = "dev"

// signInScopes are the OpenID Connect scopes requested during sign-in, on top
// of the configured API scope.
var signInScopes = []string{"openid", "profile", "email"}

// App carries global CLI state shared across commands.
type App struct {
	Config       *config.Config
	Sessions     *session.Store
	API          *api.Client
	Identity     *identity.CachedProvider
	OutputFormat string
	Debug        bool
	Log          *logrus.Logger
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// MustApp returns the initialized application context.
func MustApp() *App {
	if app == nil {
		panic("cli not initialized")
	}
	return app
}

// EnsureToken obtains a valid bearer token for the active account and attaches
// it to the API client. It may prompt for an interactive sign-in when silent
// renewal fails.
func (a *App) EnsureToken(ctx context.Context) error {
	token, err := a.Identity.Token(ctx)
	if err != nil {
		return err
	}
	a.API.SetToken(token)
	return nil
}

func init() {
	cobra.OnInitialize(func() {
		// Plain output when piped.
		color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	})

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $NSADMIN_HOME/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&activeProfile, "profile", "default", "configuration profile")
	rootCmd.PersistentFlags().StringVar(&overrideAPI, "api-url", "", "override API base URL")
	rootCmd.PersistentFlags().StringVar(&overrideFormat, "format", "", "set default output format")
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newDashboardCommand(),
		newCustomersCommand(),
		newAnalyticsCommand(),
		newHealthCommand(),
		newWhoamiCommand(),
	)
}

func initApp(cmd *cobra.Command) error {
	var initErr error
	appOnce.Do(func() {
		cfgPath := cfgFile
		if cfgPath == "" {
			home, err := config.DefaultHomeDir()
			if err != nil {
				initErr = fmt.Errorf("determine config directory: %w", err)
				return
			}
			cfgPath = filepath.Join(home, "config.yaml")
		}

		cfg, err := config.Load(cfgPath, activeProfile)
		if err != nil {
			initErr = err
			return
		}

		if overrideAPI != "" {
			cfg.APIBaseURL = strings.TrimRight(overrideAPI, "/")
		}
		if overrideFormat != "" {
			cfg.OutputFormat = overrideFormat
		}
		if cfg.HomeDir == "" {
			cfg.HomeDir, _ = config.DefaultHomeDir()
		}

		if err := os.MkdirAll(cfg.HomeDir, 0o700); err != nil {
			initErr = fmt.Errorf("ensure nsadmin home: %w", err)
			return
		}

		log := logrus.StandardLogger()
		if debugEnabled {
			log.SetLevel(logrus.DebugLevel)
		}

		sessionStore := session.NewStore(filepath.Join(cfg.HomeDir, "session.json"))

		authenticator := identity.NewDeviceAuthenticator(identity.Authority{
			URL:          cfg.AuthorityURL,
			ClientID:     cfg.ClientID,
			SignInScopes: signInScopes,
			APIScope:     cfg.APIScope,
		}, nil)

		apiClient := api.NewClient(cfg.APIBaseURL,
			api.WithTimeout(30*time.Second),
			api.WithUserAgent("nsadmin/"+version),
		)

		app = &App{
			Config:       cfg,
			Sessions:     sessionStore,
			API:          apiClient,
			Identity:     identity.NewProvider(sessionStore, authenticator),
			OutputFormat: cfg.OutputFormat,
			Debug:        debugEnabled,
			Log:          log,
		}
	})

	if initErr != nil {
		return initErr
	}

	if app == nil {
		return fmt.Errorf("failed to initialize cli")
	}

	if cmd.Name() != "login" {
		// attach cached session token to the API client if available
		if sess, err := app.Sessions.Load(); err == nil && sess != nil {
			if sess.APIBaseURL != "" && !strings.EqualFold(sess.APIBaseURL, app.Config.APIBaseURL) && overrideAPI == "" {
				app.Config.APIBaseURL = sess.APIBaseURL
				app.API = api.NewClient(app.Config.APIBaseURL,
					api.WithTimeout(30*time.Second),
					api.WithUserAgent("nsadmin/"+version),
				)
			}
			app.API.SetToken(sess.Token)
		}
	}

	return nil
}
