// Package config provides environment configuration helpers for go-objsize commands.
package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvCamera   = "OBJSIZE_CAMERA"
	EnvRefPx    = "OBJSIZE_REF_PX"
	EnvRefCM    = "OBJSIZE_REF_CM"
	EnvMinArea  = "OBJSIZE_MIN_AREA"
	EnvWebAddr  = "OBJSIZE_WEB_ADDR"
	EnvLogLevel = "LOG_LEVEL"
)

// DefaultCamera is the capture device used when nothing else is configured.
// Index 1 is what the measuring rig was set up with; most laptops expose
// their built-in camera as 0.
const DefaultCamera = "1"

// Camera returns the capture device from OBJSIZE_CAMERA.
// Falls back to DefaultCamera if not set.
func Camera() string {
	return String(EnvCamera, DefaultCamera)
}

// WebAddr returns the dashboard listen address from OBJSIZE_WEB_ADDR.
// Empty means the dashboard is disabled.
func WebAddr() string {
	return os.Getenv(EnvWebAddr)
}

// LogLevel returns the log level from LOG_LEVEL or "info".
func LogLevel() string {
	return String(EnvLogLevel, "info")
}

// String returns the value of key, or def if unset or empty.
func String(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Float returns key parsed as a float64, or def if unset or unparsable.
func Float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Int returns key parsed as an int, or def if unset or unparsable.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
