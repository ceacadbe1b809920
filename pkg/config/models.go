package config

import "time"

type Config struct {
	Server    ServerConfig
	Transport TransportConfig
	Storage   StorageConfig
	Directory DirectoryConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Address         string
	Auth            AuthConfig
	ConnectionLimit ConnectionLimitConfig `mapstructure:"connectionLimit"`
}

type AuthConfig struct {
	// Required gates the /ws upgrade behind JWT session tokens. When false
	// the socket identifies itself through the join event, matching clients
	// that have no token plumbing.
	Required  bool   `mapstructure:"required"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

type ConnectionLimitConfig struct {
	MaxPerUser int    `mapstructure:"maxPerUser"`
	Mode       string `mapstructure:"mode"` // "reject" or "cycle"
}

type TransportConfig struct {
	ReadTimeout time.Duration `mapstructure:"readTimeout"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	Path   string `mapstructure:"path"`   // sqlite database file
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

type DirectoryConfig struct {
	// SeedFile is an optional CSV of id,name rows imported into the users
	// table at startup. Existing rows are left untouched.
	SeedFile string `mapstructure:"seedFile"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
