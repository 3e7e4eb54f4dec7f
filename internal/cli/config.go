package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ironsheep/image-prep/internal/sequence"
)

const (
	configBaseName   = "image-prep"
	configFolderPath = "."

	envPrefix = "IMAGE_PREP"

	configFlagName   = "config"
	logLevelFlagName = "log-level"
	logFileFlagName  = "log-file"

	logLevelKey      = "log.level"
	logFileKey       = "log.file"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	circleAntialiasKey  = "circle.antialias"
	circleSquareKey     = "circle.square"
	circleFeatherKey    = "circle.feather"
	circleBackgroundKey = "circle.background"
	circleFilterKey     = "circle.filter"
	circleParallelKey   = "circle.parallel"
	circleSoftFailKey   = "circle.soft_fail"

	renameExtKey   = "rename.ext"
	renameStartKey = "rename.start"

	defaultLogLevel      = "warn"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true

	defaultCircleParallel = 4
	defaultRenameStart    = 1
)

// newConfig returns a viper instance carrying every default, reading
// IMAGE_PREP_* environment variables.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configFolderPath)
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault(logLevelKey, defaultLogLevel)
	v.SetDefault(logFileKey, "")
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)

	v.SetDefault(circleAntialiasKey, false)
	v.SetDefault(circleSquareKey, false)
	v.SetDefault(circleFeatherKey, 0.0)
	v.SetDefault(circleBackgroundKey, "")
	v.SetDefault(circleFilterKey, "lanczos")
	v.SetDefault(circleParallelKey, defaultCircleParallel)
	v.SetDefault(circleSoftFailKey, false)

	v.SetDefault(renameExtKey, sequence.DefaultExt)
	v.SetDefault(renameStartKey, defaultRenameStart)

	return v
}

// readConfig loads path, or image-prep.yaml from the working directory when
// path is empty. Only an explicitly named file is required to exist.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config")
	return nil
}

// configureLogger points the global zerolog logger at stderr, plus a
// rotated log file when log.file is set.
func configureLogger(v *viper.Viper, stderr io.Writer) error {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString(logLevelKey))))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}}
	if path := strings.TrimSpace(v.GetString(logFileKey)); path != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   path,
			MaxSize:    v.GetInt(logMaxSizeKey),
			MaxBackups: v.GetInt(logMaxBackupsKey),
			MaxAge:     v.GetInt(logMaxAgeKey),
			Compress:   v.GetBool(logCompressKey),
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}
