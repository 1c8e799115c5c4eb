// Package envutil reads typed values from the environment. Blank or
// unparsable values fall back to the default.
package envutil

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

func read[T any](name string, def T, parse func(string) (T, error)) T {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func String(name, def string) string {
	return read(name, def, func(v string) (string, error) { return v, nil })
}

func Int(name string, def int) int {
	return read(name, def, strconv.Atoi)
}

func Float(name string, def float64) float64 {
	return read(name, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

var errNotBool = errors.New("not a boolean")

// Bool accepts 1/0, true/false, yes/no and on/off.
func Bool(name string, def bool) bool {
	return read(name, def, func(v string) (bool, error) {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
		return false, errNotBool
	})
}

// Duration accepts Go duration strings ("45s") or a bare number of seconds.
func Duration(name string, def time.Duration) time.Duration {
	return read(name, def, func(v string) (time.Duration, error) {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return time.ParseDuration(v)
	})
}
