// Package audit scores the freshness of the regulation dataset and the
// strength of the vehicle match, attaching human-readable caveats. It never
// alters computed numbers; it only annotates.
package audit

import (
	"fmt"
	"time"

	"github.com/PortsideHQ/portside-engine/engine/domain"
)

// StalenessThreshold is how old regulation data may be before a caveat is
// attached. Stale data is flagged, never silently trusted.
const StalenessThreshold = 90 * 24 * time.Hour

// Caveats returns the warnings for a result computed at now, from regulation
// data verified at asOf, with the given vehicle-match confidence. An empty
// slice means the result carries no reservations.
func Caveats(now, asOf time.Time, confidence int) []string {
	var out []string
	if age := now.Sub(asOf); age > StalenessThreshold {
		days := int(age.Hours() / 24)
		out = append(out, fmt.Sprintf("regulation data last verified %d days ago; rates and requirements may have changed", days))
	}
	if confidence < domain.ConfidenceReliable {
		out = append(out, fmt.Sprintf("vehicle match confidence %d is below the reliable threshold; verify the vehicle identity before acting on this result", confidence))
	}
	return out
}
