package instance

import (
	"os"

	"github.com/Shashankphatkure/equico-app/pkg/env"
)

// GetID identifies this process in logs and lock ownership: EQUICO_INSTANCE_ID,
// then the hostname, then a fixed fallback.
func GetID() string {
	if id := env.Get("EQUICO_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "equico-0"
}
