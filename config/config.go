// Package config resolves the connection options of the document store.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix is prepended to every environment variable read by [Load].
const DefaultEnvPrefix = "MONGORM"

// Default values used when an option is absent.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 27017
	DefaultName           = "openerp"
	DefaultAuthMechanism  = "MONGODB-CR"
	DefaultURI            = "mongodb://localhost:27017/"
	DefaultRequestTimeout = 30 * time.Second
)

// DefaultConfig holds every default value.
var DefaultConfig = Config{
	Host:           DefaultHost,
	Port:           DefaultPort,
	Name:           DefaultName,
	AuthMechanism:  DefaultAuthMechanism,
	URI:            DefaultURI,
	RequestTimeout: DefaultRequestTimeout,
}

// Config holds the recognized connection options.
type Config struct {
	Host          string `json:"mongodb_host,omitempty"           mapstructure:"mongodb_host"`
	Port          int    `json:"mongodb_port,omitempty"           mapstructure:"mongodb_port"`
	Name          string `json:"mongodb_name,omitempty"           mapstructure:"mongodb_name"`
	User          string `json:"mongodb_user,omitempty"           mapstructure:"mongodb_user"`
	Password      string `json:"mongodb_pass,omitempty"           mapstructure:"mongodb_pass"`
	AuthMechanism string `json:"mongodb_auth_mechanism,omitempty" mapstructure:"mongodb_auth_mechanism"`
	ReplicaSet    string `json:"mongodb_replicaset,omitempty"     mapstructure:"mongodb_replicaset"`
	// URI is used verbatim when a replica set is configured.
	URI string `json:"mongodb_uri,omitempty" mapstructure:"mongodb_uri"`
	// RequestTimeout is passed to the store client as its operation
	// timeout.
	RequestTimeout time.Duration `json:"mongodb_timeout,omitempty" mapstructure:"mongodb_timeout"`
}

// Address returns the host:port pair of a single-node connection.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HasAuth reports whether credentials were configured.
func (c Config) HasAuth() bool { return c.User != "" }

// Load resolves the configuration from defaults, an optional config file and
// the environment, in increasing order of precedence.
func Load(options ...Option) (*Config, error) {
	opts := loadOptions{
		envPrefix:   DefaultEnvPrefix,
		defaultName: DefaultName,
	}
	for _, option := range options {
		option(&opts)
	}

	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(opts.envPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	defaults := map[string]any{
		"mongodb_host":           DefaultHost,
		"mongodb_port":           DefaultPort,
		"mongodb_name":           opts.defaultName,
		"mongodb_user":           "",
		"mongodb_pass":           "",
		"mongodb_auth_mechanism": DefaultAuthMechanism,
		"mongodb_replicaset":     "",
		"mongodb_uri":            DefaultURI,
		"mongodb_timeout":        DefaultRequestTimeout,
	}
	for key, value := range defaults {
		_ = v.BindEnv(key)
		v.SetDefault(key, value)
	}

	if opts.file != "" {
		v.SetConfigFile(opts.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	for key, value := range opts.overrides {
		v.Set(key, value)
	}

	decodeHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)

	config := &Config{}
	if err := v.Unmarshal(config, viper.DecodeHook(decodeHooks)); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return config, nil
}
