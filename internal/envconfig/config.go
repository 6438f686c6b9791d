// Package envconfig reads runtime tuning knobs from IM2COL_* environment variables.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Var reads key from the process environment, dropping surrounding blanks
// first and then surrounding quotes, so both ` 4 ` and `'4'` read back as "4".
func Var(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	return strings.Trim(v, `"'`)
}

// BoolWithDefault returns a reader for a boolean variable. Unparseable
// non-empty values count as true.
func BoolWithDefault(key string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a reader for a boolean variable that defaults to false.
func Bool(key string) func() bool {
	withDefault := BoolWithDefault(key)
	return func() bool {
		return withDefault(false)
	}
}

// Uint returns a reader for an unsigned variable. Invalid values are logged
// and replaced by defaultValue.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// Workers caps the goroutines used by the parallel transforms. 0 means one per CPU.
	Workers = Uint("IM2COL_WORKERS", 0)
	// Sequential disables the parallel transforms entirely.
	Sequential = Bool("IM2COL_SEQUENTIAL")
)

// LogLevel is the CLI log threshold taken from IM2COL_DEBUG. Unset, false or
// unparseable values keep slog.LevelInfo. Any true boolean ("1", "true")
// lowers it to slog.LevelDebug, and a larger integer n lowers it by n steps
// of 4 so IM2COL_DEBUG=2 also shows messages logged at slog.LevelDebug-4.
func LogLevel() slog.Level {
	s := Var("IM2COL_DEBUG")
	if s == "" {
		return slog.LevelInfo
	}
	if on, err := strconv.ParseBool(s); err == nil {
		if on {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n != 0 {
		return slog.Level(-4 * n)
	}
	return slog.LevelInfo
}

// EnvVar describes one recognised variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every recognised variable with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"IM2COL_WORKERS":    {"IM2COL_WORKERS", Workers(), "Maximum goroutines for parallel spread/gather (0 = NumCPU)"},
		"IM2COL_SEQUENTIAL": {"IM2COL_SEQUENTIAL", Sequential(), "Run parallel entry points sequentially"},
		"IM2COL_DEBUG":      {"IM2COL_DEBUG", LogLevel(), "Show additional debug information (e.g. IM2COL_DEBUG=1)"},
	}
}
