package mesh

import (
	"fmt"
	"strings"
)

// InvalidTopologyError reports a mesh that cannot be simulated: dangling
// spring references, self loops, bad lengths, or points the anchor cannot
// reach.
type InvalidTopologyError struct {
	Reason string
	Points []string
}

func (e *InvalidTopologyError) Error() string {
	if len(e.Points) == 0 {
		return "invalid topology: " + e.Reason
	}
	return fmt.Sprintf("invalid topology: %s: %s", e.Reason, strings.Join(e.Points, ", "))
}

func topologyErr(reason string, points ...string) error {
	return &InvalidTopologyError{Reason: reason, Points: points}
}
