package config

import "os"

// colorSuppressed honors NO_COLOR (https://no-color.org) and dumb terminals.
func colorSuppressed() bool {
	if v, ok := os.LookupEnv("NO_COLOR"); ok && v != "" {
		return true
	}
	return os.Getenv("TERM") == "dumb"
}
