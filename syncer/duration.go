package syncer

import (
	"time"

	"github.com/sosodev/duration"
)

// Seconds converts an ISO 8601 duration such as "PT5M32S" to a whole number
// of seconds. Anything that cannot be decoded counts as 0.
func Seconds(iso string) int {
	parsed, err := duration.Parse(iso)
	if err != nil {
		return 0
	}

	seconds := int(parsed.ToTimeDuration() / time.Second)
	if seconds < 0 {
		return 0
	}

	return seconds
}
