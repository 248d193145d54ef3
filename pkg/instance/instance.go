package instance

import "github.com/Coco120903/BananaMeow-sub000/pkg/env"

// GetID returns the process instance identifier used in startup logs.
// Heroku sets DYNO; other platforms can set BANANAMEOW_INSTANCE_ID.
func GetID() string {
	if id := env.First("BANANAMEOW_INSTANCE_ID", "DYNO", "HOSTNAME"); id != "" {
		return id
	}
	return "local"
}
