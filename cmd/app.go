package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"runanalyzer/internal/auth"
	"runanalyzer/internal/coach"
	"runanalyzer/internal/config"
	"runanalyzer/internal/fitfile"
	"runanalyzer/internal/logging"
	"runanalyzer/internal/service"
	"runanalyzer/internal/store"
	"runanalyzer/internal/strava"
)

const stravaAPISettingsURL = "https://www.strava.com/settings/api"

// appContext holds everything a command needs once configuration is loaded
type appContext struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *store.DB
	client  *strava.Client // nil when not logged in
	svc     *service.AnalysisService
	coach   coach.Coach
	metrics *http.Server
}

type setupOptions struct {
	// console receives log records; nil keeps logs in the file only
	console io.Writer
	// requireStrava fails setup when Strava credentials are missing
	requireStrava bool
}

// loadConfig reads and validates the configuration. Without Strava
// credentials the defaults are enough for offline work.
func loadConfig(out io.Writer, requireStrava bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, config.ErrNoConfig) {
		if requireStrava {
			path, createErr := config.CreateExample(cfgFile)
			if createErr != nil {
				return nil, fmt.Errorf("creating example config: %w", createErr)
			}
			fmt.Fprintf(out, "No config file found. Created an example at:\n  %s\n\n", path)
			fmt.Fprintf(out, "Add your Strava API credentials from %s\n", stravaAPISettingsURL)
			return nil, err
		}
		defaults := config.DefaultConfig()
		cfg, err = &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.ValidateGeneral(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if requireStrava {
		if err := cfg.ValidateStrava(); err != nil {
			return nil, fmt.Errorf("invalid config: %w (get credentials from %s)", err, stravaAPISettingsURL)
		}
	}
	return cfg, nil
}

// setup loads config and wires the logger, store, Strava client, coach and
// analysis service
func setup(ctx context.Context, cmd *cobra.Command, opts setupOptions) (*appContext, error) {
	cfg, err := loadConfig(cmd.OutOrStdout(), opts.requireStrava)
	if err != nil {
		return nil, err
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	logger, err := logging.NewLogger(cfg.Log, opts.console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a := &appContext{cfg: cfg, logger: logger}
	if cfg.Metrics.Addr != "" {
		a.metrics = startMetricsServer(cfg.Metrics.Addr, logger)
	}

	a.db, err = store.Open(cfg.DataPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.ValidateStrava() == nil {
		a.client, err = a.stravaClient()
		if err != nil && !errors.Is(err, store.ErrNoAuth) {
			a.Close()
			return nil, err
		}
	}

	a.coach, err = coach.New(ctx, cfg.Coach, logger)
	if err != nil {
		if !errors.Is(err, coach.ErrCoachDisabled) {
			logger.Error("AI coach unavailable", zap.Error(err))
		}
		a.coach = coach.Disabled{}
	}

	// A typed nil client must not reach the service as a non-nil Provider
	var provider service.Provider
	if a.client != nil {
		provider = a.client
	}
	a.svc = service.NewAnalysisService(provider, a.db, cfg.Fetch, logger)

	logger.Debug("Setup complete",
		zap.Bool("online", provider != nil),
		zap.Bool("coach", a.coach.Enabled()),
	)
	return a, nil
}

// stravaClient builds an API client from the stored tokens. Refreshed
// tokens are written back to the store.
func (a *appContext) stravaClient() (*strava.Client, error) {
	stored, err := a.db.GetAuth()
	if err != nil {
		if errors.Is(err, store.ErrNoAuth) {
			a.logger.Info("No Strava login stored; running offline")
		}
		return nil, err
	}

	oauthCfg := auth.NewOAuthConfig(a.authConfig())
	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       stored.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(oauthCfg, token, func(t *oauth2.Token) error {
		return a.db.UpdateTokens(t.AccessToken, t.RefreshToken, t.Expiry)
	}, a.logger)
	if tokenSource.IsExpired() {
		a.logger.Info("Stored Strava token expired; refreshing on first request",
			zap.Time("expired_at", stored.ExpiresAt),
		)
	}

	return strava.NewClient(tokenSource, strava.WithLogger(a.logger)), nil
}

func (a *appContext) authConfig() auth.Config {
	return auth.Config{
		ClientID:     a.cfg.Strava.ClientID,
		ClientSecret: a.cfg.Strava.ClientSecret,
		CallbackPort: a.cfg.Strava.CallbackPort,
	}
}

func (a *appContext) analyzeFIT(ctx context.Context, path string) (*service.Report, error) {
	f, err := fitfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	a.logger.Info("Loaded FIT file",
		zap.String("path", path),
		zap.String("sport", f.Sport),
		zap.Int("records", f.Records),
	)
	return a.svc.AnalyzeBundle(ctx, path, f.Bundle)
}

// Close releases the store and stops the metrics server
func (a *appContext) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Warn("Stopping metrics server", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Closing database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
