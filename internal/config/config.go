// Package config loads the client configuration. Later layers override earlier
// ones: defaults, an optional config file, ROBOTS_* environment variables and
// finally command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"slices"

	"github.com/blukai/robots/internal/robotsclient"
	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/phuslu/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "robots"

const maxPlayerNameLen = 255

var logLevels = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic"}

type Config struct {
	PlayerName    string `mapstructure:"player_name" envconfig:"PLAYER_NAME"`
	ServerAddress string `mapstructure:"server_address" envconfig:"SERVER_ADDRESS"`
	GUIAddress    string `mapstructure:"gui_address" envconfig:"GUI_ADDRESS"`
	Port          uint16 `mapstructure:"port" envconfig:"PORT"`
	LogLevel      string `mapstructure:"log_level" envconfig:"LOG_LEVEL"`

	// ConfigFile is only read from the environment and the command line.
	ConfigFile string `mapstructure:"-" envconfig:"CONFIG"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
	}
}

// Load builds the configuration from all layers and validates it. args are
// the command line arguments without the program name. pflag.ErrHelp is
// returned when help was requested; usage was already written to usage.
func Load(args []string, usage io.Writer) (*Config, error) {
	flagConfig := Default()
	flags := newFlagSet(&flagConfig, usage)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	// the config file path itself comes from env or flags
	probe := Default()
	if err := envconfig.Process(envPrefix, &probe); err != nil {
		return nil, fmt.Errorf("could not process env: %w", err)
	}
	configFile := probe.ConfigFile
	if flags.Changed("config") {
		configFile = flagConfig.ConfigFile
	}

	config := Default()
	if configFile != "" {
		if err := loadFile(configFile, &config); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(envPrefix, &config); err != nil {
		return nil, fmt.Errorf("could not process env: %w", err)
	}

	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "player-name":
			config.PlayerName = flagConfig.PlayerName
		case "server-address":
			config.ServerAddress = flagConfig.ServerAddress
		case "gui-address":
			config.GUIAddress = flagConfig.GUIAddress
		case "port":
			config.Port = flagConfig.Port
		case "log-level":
			config.LogLevel = flagConfig.LogLevel
		case "config":
			config.ConfigFile = flagConfig.ConfigFile
		}
	})

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func newFlagSet(config *Config, usage io.Writer) *pflag.FlagSet {
	flags := pflag.NewFlagSet("robots-client", pflag.ContinueOnError)
	flags.SetOutput(usage)
	flags.SortFlags = false

	flags.StringVarP(&config.PlayerName, "player-name", "n", config.PlayerName, "name to join the game with")
	flags.StringVarP(&config.ServerAddress, "server-address", "s", config.ServerAddress, "game server address (host:port)")
	flags.StringVarP(&config.GUIAddress, "gui-address", "d", config.GUIAddress, "front-end address (host:port)")
	flags.Uint16VarP(&config.Port, "port", "p", config.Port, "port to receive front-end messages on (0 picks one)")
	flags.StringVarP(&config.LogLevel, "log-level", "l", config.LogLevel, "one of trace, debug, info, warn, error")
	flags.StringVarP(&config.ConfigFile, "config", "c", config.ConfigFile, "optional yaml, toml or json config file")

	return flags
}

// loadFile overlays the keys present in the file onto config. A missing file
// is not an error.
func loadFile(path string, config *Config) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("could not read config file: %w", err)
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("could not unmarshal config file: %w", err)
	}

	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.PlayerName == "" {
		errs = multierror.Append(errs, errors.New("player name is required"))
	} else if len(c.PlayerName) > maxPlayerNameLen {
		errs = multierror.Append(errs, fmt.Errorf("player name is longer than %d bytes", maxPlayerNameLen))
	}

	if err := validateAddress(c.ServerAddress); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("server address: %w", err))
	}
	if err := validateAddress(c.GUIAddress); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("gui address: %w", err))
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		errs = multierror.Append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}

	return errs.ErrorOrNil()
}

func validateAddress(address string) error {
	if address == "" {
		return errors.New("required")
	}
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if host == "" || port == "" {
		return fmt.Errorf("%q must be host:port", address)
	}
	return nil
}

func (c *Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}

func (c *Config) RobotsClient() robotsclient.Config {
	return robotsclient.Config{
		PlayerName:    c.PlayerName,
		ServerAddress: c.ServerAddress,
		GUIAddress:    c.GUIAddress,
		Port:          c.Port,
	}
}
