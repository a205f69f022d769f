package instance

import "os"

// GetID identifies this worker process in logs. Deployments set
// OPTICA_INSTANCE_ID; local runs fall back to the hostname.
func GetID() string {
	if id := os.Getenv("OPTICA_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
