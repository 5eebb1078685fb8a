package config

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/releaseboard/pkg/domain/model/config"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// AppConfig locates the tuning file of the application
type AppConfig struct {
	path string
}

func (x *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML tuning file (defaults apply when omitted)",
			Sources:     cli.EnvVars("RELEASEBOARD_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x AppConfig) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Path returns the configured file path
func (x *AppConfig) Path() string {
	return x.path
}

// Configure loads the tuning file. Without a path, or when the file does
// not exist, the defaults are returned.
func (x *AppConfig) Configure() (domainConfig.Tuning, error) {
	if x.path == "" {
		return domainConfig.DefaultTuning(), nil
	}
	return LoadTuning(x.path)
}

type tuningFile struct {
	Dedup struct {
		Window string `toml:"window"`
	} `toml:"dedup"`
	Health struct {
		Bucket       string `toml:"bucket"`
		GapThreshold *int   `toml:"gap_threshold"`
		DefaultRange string `toml:"default_range"`
	} `toml:"health"`
	Analytics struct {
		TopFeatures *int `toml:"top_features"`
	} `toml:"analytics"`
}

// LoadTuning reads a TOML tuning file
func LoadTuning(path string) (domainConfig.Tuning, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Default().Warn("Tuning file not found, using defaults", "path", path)
			return domainConfig.DefaultTuning(), nil
		}
		return domainConfig.Tuning{}, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	tuning, err := ParseTuning(data)
	if err != nil {
		return domainConfig.Tuning{}, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}
	return tuning, nil
}

// ParseTuning decodes TOML into a Tuning. Keys that are absent keep their
// default values; unknown keys are rejected.
func ParseTuning(data []byte) (domainConfig.Tuning, error) {
	var file tuningFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return domainConfig.Tuning{}, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V("reason", err.Error()))
	}

	tuning := domainConfig.DefaultTuning()
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"dedup.window", file.Dedup.Window, &tuning.DedupWindow},
		{"health.bucket", file.Health.Bucket, &tuning.HealthBucket},
		{"health.default_range", file.Health.DefaultRange, &tuning.HealthDefaultRange},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return domainConfig.Tuning{}, goerr.Wrap(ErrInvalidDuration, "failed to parse duration",
				goerr.V(ConfigKeyKey, d.key), goerr.V("value", d.raw))
		}
		*d.dst = v
	}
	if file.Health.GapThreshold != nil {
		tuning.GapThreshold = *file.Health.GapThreshold
	}
	if file.Analytics.TopFeatures != nil {
		tuning.TopFeatures = *file.Analytics.TopFeatures
	}

	if err := tuning.Validate(); err != nil {
		return domainConfig.Tuning{}, goerr.Wrap(ErrInvalidConfig, "tuning is out of range", goerr.V("reason", err.Error()))
	}
	return tuning, nil
}
