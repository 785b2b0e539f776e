package config

import "errors"

var (
	// ErrNoConfig is returned when the config file doesn't exist and the
	// environment doesn't supply Strava credentials either
	ErrNoConfig = errors.New("config file not found")

	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrMissingClientID     = errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	ErrMissingClientSecret = errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	ErrInvalidCallbackPort = errors.New("strava.callback_port must be between 1 and 65535")
	ErrInvalidAfterDays    = errors.New("fetch.after_days must be positive")
	ErrInvalidCoachTimeout = errors.New("coach.timeout must be positive")
	ErrInvalidLogLevel     = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log.format must be console or json")
)
