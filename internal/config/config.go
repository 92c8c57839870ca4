// Package config resolves qsim settings from defaults, a config file,
// QSIM_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Keys understood in qsim.yaml and as QSIM_ environment variables.
const (
	KeyShots       = "shots"
	KeySeed        = "seed"
	KeyWorkers     = "workers"
	KeyNoise       = "noise.enabled"
	KeyPReset      = "noise.p_reset"
	KeyPMeas       = "noise.p_meas"
	KeyPGate1      = "noise.p_gate1"
	KeyHistoryPath = "history.path"
	KeyLogLevel    = "log.level"
	KeyFormat      = "output.format"
)

// flagKeys maps command line flag names onto config keys.
var flagKeys = map[string]string{
	"shots":        KeyShots,
	"seed":         KeySeed,
	"workers":      KeyWorkers,
	"p-reset":      KeyPReset,
	"p-meas":       KeyPMeas,
	"p-gate1":      KeyPGate1,
	"history-path": KeyHistoryPath,
	"log-level":    KeyLogLevel,
	"format":       KeyFormat,
}

var (
	ErrInvalidShots       = errors.New("shots must be positive")
	ErrInvalidWorkers     = errors.New("workers must be at least 1")
	ErrInvalidFormat      = errors.New("unknown output format")
	ErrInvalidProbability = errors.New("noise probability outside [0, 1]")
)

// NoiseConfig holds the bit-flip probabilities of the noise model.
type NoiseConfig struct {
	Enabled bool
	PReset  float64
	PMeas   float64
	PGate1  float64
}

// Config is the resolved set of settings for one invocation.
type Config struct {
	Shots       int
	Seed        uint64
	Workers     int
	Noise       NoiseConfig
	HistoryPath string
	LogLevel    string
	Format      string

	// File is the config file that was read, empty when none was found.
	File string
}

/*
Load resolves the configuration. Flags that were set explicitly win over
environment variables, which win over the config file, which wins over the
built-in defaults. An explicit configFile must exist; otherwise qsim.yaml is
looked up in the working directory and in $HOME/.config/qsim.
*/
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("qsim")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("qsim")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "qsim"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	cfg := &Config{
		Shots:   v.GetInt(KeyShots),
		Seed:    v.GetUint64(KeySeed),
		Workers: v.GetInt(KeyWorkers),
		Noise: NoiseConfig{
			Enabled: v.GetBool(KeyNoise),
			PReset:  v.GetFloat64(KeyPReset),
			PMeas:   v.GetFloat64(KeyPMeas),
			PGate1:  v.GetFloat64(KeyPGate1),
		},
		HistoryPath: v.GetString(KeyHistoryPath),
		LogLevel:    strings.ToLower(v.GetString(KeyLogLevel)),
		Format:      strings.ToLower(v.GetString(KeyFormat)),
		File:        v.ConfigFileUsed(),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyShots, 1000)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyNoise, true)
	v.SetDefault(KeyPReset, 0.03)
	v.SetDefault(KeyPMeas, 0.1)
	v.SetDefault(KeyPGate1, 0.05)
	v.SetDefault(KeyHistoryPath, filepath.Join(".qsim", "history.db"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyFormat, "text")
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Shots <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidShots, c.Shots)
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}

	switch c.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}

	for name, p := range map[string]float64{
		KeyPReset: c.Noise.PReset,
		KeyPMeas:  c.Noise.PMeas,
		KeyPGate1: c.Noise.PGate1,
	} {
		if !(p >= 0 && p <= 1) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidProbability, name, p)
		}
	}

	return nil
}
