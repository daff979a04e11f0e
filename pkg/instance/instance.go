package instance

import (
	"os"
	"strings"
)

// GetID names this process in logs and lock owners: WISHLIST_INSTANCE_ID,
// then the pod hostname, then "local".
func GetID() string {
	for _, key := range []string{"WISHLIST_INSTANCE_ID", "HOSTNAME"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}
