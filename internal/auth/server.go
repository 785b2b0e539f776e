package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCallbackPort is the port for the OAuth callback server
	DefaultCallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #FC4C02;">Connected to Strava</h1>
<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>`

// callback is what the redirect from Strava carried
type callback struct {
	code  string
	scope string
}

// callbackHandler validates the redirect and hands the code to results.
// Sends never block so stray browser retries cannot wedge the handler.
func callbackHandler(state string, results chan<- callback, errs chan<- error) http.HandlerFunc {
	fail := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			fail(errors.New("state mismatch - possible CSRF attack"))
			http.Error(w, "State mismatch", http.StatusBadRequest)
			return
		}

		if errMsg := q.Get("error"); errMsg != "" {
			fail(fmt.Errorf("auth error: %s", errMsg))
			http.Error(w, "Authentication failed", http.StatusBadRequest)
			return
		}

		code := q.Get("code")
		if code == "" {
			fail(errors.New("no code in callback"))
			http.Error(w, "No authorization code", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		select {
		case results <- callback{code: code, scope: q.Get("scope")}:
		default:
		}
	}
}

// Authenticate runs the OAuth flow with a local callback server. The
// authorization URL is written to out for the user to open.
func Authenticate(ctx context.Context, cfg Config, out io.Writer, logger *zap.Logger) (*AuthResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	oauthCfg := NewOAuthConfig(cfg)

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	results := make(chan callback, 1)
	errs := make(chan error, 2)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", callbackHandler(state, results, errs))

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", cfg.CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			errs <- fmt.Errorf("server error: %w", err)
		}
	}()
	defer shutdownServer(server)

	authURL := AuthCodeURL(oauthCfg, state)
	logger.Info("waiting for strava authorization", zap.Int("port", cfg.CallbackPort))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To authenticate with Strava, open this URL in your browser:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", authURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Waiting for authentication...")

	var cb callback
	select {
	case cb = <-results:
	case err := <-errs:
		return nil, err
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := oauthCfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	result := &AuthResult{
		Token:        token,
		AthleteID:    ExtractAthleteID(token),
		GrantedScope: cb.scope,
	}
	if !result.HasRequiredScope() {
		logger.Warn("granted scope is missing activity:read_all",
			zap.String("granted_scope", cb.scope))
	}
	return result, nil
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
