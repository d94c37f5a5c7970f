package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// openSource layers the dotenv file, the process environment and the explicit
// map. Viper's precedence (Set > env > config file) gives exactly that order.
func openSource(o loaderOptions) (*viper.Viper, error) {
	v := viper.New()
	if o.envFile != "" {
		path, err := filepath.Abs(o.envFile)
		if err != nil {
			path = o.envFile
		}
		switch _, statErr := os.Stat(path); {
		case statErr == nil:
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case !errors.Is(statErr, os.ErrNotExist):
			return nil, fmt.Errorf("config: read %s: %w", path, statErr)
		}
	}
	if o.useSystemEnv {
		v.AutomaticEnv()
	}
	for key, value := range o.envMap {
		v.Set(key, value)
	}
	return v, nil
}

// EnvironmentValues returns the merged key/value view Load would see, so
// dependencies needed by Load (the secret fetcher) can be built first. Keys
// from the dotenv file are reported upper-cased.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := newLoaderOptions(opts)
	src, err := openSource(options)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string)
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if ok && strings.TrimSpace(key) != "" {
				values[key] = value
			}
		}
	}
	for _, key := range src.AllKeys() {
		values[strings.ToUpper(key)] = src.GetString(key)
	}
	return values, nil
}

// reader pulls typed CHAIRLINKED_* values and records keys whose values do not
// parse, so a typo fails Load instead of silently using the default.
type reader struct {
	src     *viper.Viper
	invalid []string
}

func (r *reader) raw(key string) string {
	return strings.TrimSpace(r.src.GetString(envPrefix + key))
}

// str returns the first non-empty of the value and fallbacks.
func (r *reader) str(key string, fallbacks ...string) string {
	if value := r.raw(key); value != "" {
		return value
	}
	for _, fb := range fallbacks {
		if fb = strings.TrimSpace(fb); fb != "" {
			return fb
		}
	}
	return ""
}

func (r *reader) duration(key string, fallback time.Duration) time.Duration {
	value := r.raw(key)
	if value == "" {
		return fallback
	}
	d, err := cast.ToDurationE(value)
	if err != nil {
		r.invalid = append(r.invalid, envPrefix+key)
		return fallback
	}
	return d
}

func (r *reader) integer(key string, fallback int) int {
	value := r.raw(key)
	if value == "" {
		return fallback
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		r.invalid = append(r.invalid, envPrefix+key)
		return fallback
	}
	return n
}

func (r *reader) flag(key string, fallback bool) bool {
	value := strings.ToLower(r.raw(key))
	switch value {
	case "":
		return fallback
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		r.invalid = append(r.invalid, envPrefix+key)
		return fallback
	}
	return b
}

// list splits a comma separated value, dropping blanks.
func (r *reader) list(key string) []string {
	out := []string{}
	for _, part := range strings.Split(r.raw(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
