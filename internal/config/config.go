package config

type Config interface {
	EnvConfig
	APIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetLogLevel() string
}

// APIConfig describes where the backend lives. The values are combined
// into a single base URL, in priority order, by api.ResolveBaseURL.
type APIConfig interface {
	GetAPIBaseURL() string
	GetOrigin() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
