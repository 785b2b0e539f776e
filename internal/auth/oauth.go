package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"

	// RequiredScope lets the app read private activities and their streams
	RequiredScope = "activity:read_all"
)

// Scopes requested from Strava (Strava uses comma-separated scopes)
var Scopes = []string{
	"read," + RequiredScope,
}

// ErrNoAuth is returned when no Strava token has been stored yet
var ErrNoAuth = errors.New("not authenticated with Strava; run 'runanalyzer login'")

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackPort int
}

// RedirectURL is the local callback address Strava redirects to
func (c Config) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d/callback", c.CallbackPort)
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: cfg.RedirectURL(),
		Scopes:      Scopes,
	}
}

// AuthCodeURL builds the authorization URL. approval_prompt=force makes
// Strava show the consent screen again so a missing scope can be granted.
func AuthCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("approval_prompt", "force"),
	)
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token        *oauth2.Token
	AthleteID    int64
	GrantedScope string
}

// HasRequiredScope reports whether the user approved activity:read_all
func (r *AuthResult) HasRequiredScope() bool {
	return HasScope(r.GrantedScope, RequiredScope)
}

// HasScope reports whether a comma-separated scope list contains want
func HasScope(granted, want string) bool {
	for _, s := range strings.Split(granted, ",") {
		if strings.TrimSpace(s) == want {
			return true
		}
	}
	return false
}

// ExtractAthleteID extracts the athlete ID from the token extras.
// Strava includes athlete info in the token response.
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}
