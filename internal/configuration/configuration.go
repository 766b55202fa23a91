// Package configuration loads the tunables of the transfer engine from
// .env style files and the process environment.
package configuration

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/mitchellh/mapstructure"
)

// EnvPrefix is the prefix of all recognized keys.
const EnvPrefix = "NATIVEIO_"

const (
	KeyCaching     = EnvPrefix + "CACHING"
	KeyFlags       = EnvPrefix + "FLAGS"
	KeyChunkSize   = EnvPrefix + "CHUNK_SIZE"
	KeyBuffers     = EnvPrefix + "BUFFERS"
	KeyLockTimeout = EnvPrefix + "LOCK_TIMEOUT"
	KeyLogLevel    = EnvPrefix + "LOG_LEVEL"
)

type genericConfigProvider interface {
	Read(filenames ...string) (envMap map[string]string, err error)
}

// Settings are the decoded and validated tunables.
type Settings struct {
	Caching     handle.Caching `mapstructure:"NATIVEIO_CACHING"      validate:"gte=1,lte=7"`
	Flags       handle.Flag    `mapstructure:"NATIVEIO_FLAGS"`
	ChunkSize   int            `mapstructure:"NATIVEIO_CHUNK_SIZE"   validate:"gte=4096,lte=67108864"`
	Buffers     int            `mapstructure:"NATIVEIO_BUFFERS"      validate:"gte=1,lte=64"`
	LockTimeout time.Duration  `mapstructure:"NATIVEIO_LOCK_TIMEOUT" validate:"gte=0"`
	LogLevel    string         `mapstructure:"NATIVEIO_LOG_LEVEL"    validate:"oneof=debug info warn error"`
}

// Defaults returns the key-value defaults applied before any file or the
// environment is read.
func Defaults() map[string]string {
	return map[string]string{
		KeyCaching:     handle.CachingAll.String(),
		KeyFlags:       "",
		KeyChunkSize:   strconv.Itoa(1 << 20), //nolint:mnd
		KeyBuffers:     "4",
		KeyLockTimeout: "5s",
		KeyLogLevel:    "info",
	}
}

// SlogLevel returns the log level as a [slog.Level].
func (s *Settings) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

// Handler loads [Settings] through its configuration reader.
type Handler struct {
	ConfigReader genericConfigProvider

	// Environ returns the process environment, [os.Environ] by default.
	Environ func() []string
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(reader genericConfigProvider) *Handler {
	return &Handler{
		ConfigReader: reader,
		Environ:      os.Environ,
	}
}

// Load merges the defaults, the given configuration files and the process
// environment (in increasing precedence) and decodes the result. Keys not
// starting with [EnvPrefix] are ignored.
func (c *Handler) Load(filenames ...string) (*Settings, error) {
	merged := Defaults()

	if len(filenames) > 0 {
		envMap, err := c.ConfigReader.Read(filenames...)
		if err != nil {
			return nil, fmt.Errorf("(config) failed to read configuration: %w", err)
		}
		for k, v := range envMap {
			if strings.HasPrefix(k, EnvPrefix) {
				merged[k] = v
			}
		}
	}

	if c.Environ != nil {
		for _, kv := range c.Environ() {
			k, v, ok := strings.Cut(kv, "=")
			if ok && strings.HasPrefix(k, EnvPrefix) {
				merged[k] = v
			}
		}
	}

	return Decode(merged)
}

// Decode converts a key-value map into validated [Settings].
func Decode(envMap map[string]string) (*Settings, error) {
	settings := &Settings{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToEnumHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           settings,
	})
	if err != nil {
		return nil, fmt.Errorf("(config) %w", err)
	}

	if err := decoder.Decode(envMap); err != nil {
		return nil, fmt.Errorf("(config) failed to decode configuration: %w", err)
	}

	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))

	if err := Validate(settings); err != nil {
		return nil, fmt.Errorf("(config) %w", err)
	}

	return settings, nil
}

// stringToEnumHookFunc decodes caching and flag names.
func stringToEnumHookFunc() mapstructure.DecodeHookFuncType {
	cachingType := reflect.TypeOf(handle.Caching(0))
	flagType := reflect.TypeOf(handle.Flag(0))

	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		s := strings.TrimSpace(data.(string)) //nolint:forcetypeassert

		switch t {
		case cachingType:
			return handle.ParseCaching(s)
		case flagType:
			return handle.ParseFlags(s)
		}

		return data, nil
	}
}
