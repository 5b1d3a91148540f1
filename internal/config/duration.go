package config

import (
	"time"
)

// Duration is a time.Duration that decodes from strings like "10s" or "720h"
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the string representation
func (d Duration) String() string {
	return time.Duration(d).String()
}
