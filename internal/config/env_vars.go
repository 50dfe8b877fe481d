package config

import (
	"os"
	"path/filepath"
)

const (
	appNameVar    = "APP_NAME"
	apiURLEnvVar  = "JOBTRACK_API_URL"
	originEnvVar  = "JOBTRACK_ORIGIN"
	folderEnvVar  = "JOBTRACK_DATA_FOLDER"
	logLevelVar   = "LOG_LEVEL"
	defaultFolder = "jobtrack"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "JobTrack")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetAPIBaseURL returns the explicitly configured backend base URL
// (e.g. "https://api.jobtrack.example.com"). Empty means not set.
func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiURLEnvVar, "")
}

// GetOrigin returns the origin of the deployment the client is embedded
// in. When set and no explicit API URL is configured, requests go to the
// same origin so a reverse proxy can route them.
func (EnvVars) GetOrigin() string {
	return GetEnv(originEnvVar, "")
}

// GetDataFolder returns the directory used for persisted credentials.
// Defaults to a "jobtrack" directory under the user config dir.
func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(folderEnvVar); folder != "" {
		return folder
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return defaultFolder
	}
	return filepath.Join(configDir, defaultFolder)
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
