package grouprunner

import (
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
)

// timeRounding keeps durations in rendered output readable.
const timeRounding = time.Millisecond

// getResultString returns a short glyphed string representing a status
func getResultString(status types.TestStatus) string {
	switch status {
	case types.TestStatusPass:
		return "✓ pass"
	case types.TestStatusSkip:
		return "- skip"
	case types.TestStatusTimeout:
		return "✗ timeout"
	case types.TestStatusError:
		return "✗ error"
	default:
		return "✗ fail"
	}
}
