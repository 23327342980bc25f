package runner

import (
	"sync"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
)

var _ ResultCollector = (*resultCollector)(nil)

// ResultCollector accumulates per-test outcomes as they are produced and
// exposes them both as a final keyed set and as a live stream for progress
// reporting by external collaborators.
type ResultCollector interface {
	// Record stores one outcome and fans it out to subscribers. Outcomes
	// arrive in completion order, which is unordered within a group.
	Record(outcome *types.Outcome)

	// Outcomes returns a snapshot of all outcomes recorded so far, keyed
	// by test ID.
	Outcomes() map[string]*types.Outcome

	// Len returns the number of outcomes recorded so far.
	Len() int

	// Subscribe returns a channel streaming every subsequently recorded
	// outcome. A slow subscriber never stalls execution: outcomes that do
	// not fit the channel buffer are dropped for that subscriber only.
	Subscribe(buffer int) <-chan *types.Outcome

	// Close marks the end of the run and closes all subscriber channels.
	Close()
}

// resultCollector implements ResultCollector
type resultCollector struct {
	log log.Logger

	mu          sync.Mutex
	outcomes    map[string]*types.Outcome
	subscribers []chan *types.Outcome
	closed      bool
}

// NewResultCollector creates a new result collector
func NewResultCollector(logger log.Logger) ResultCollector {
	if logger == nil {
		logger = log.Root()
	}
	return &resultCollector{
		log:      logger.New("component", "collector"),
		outcomes: make(map[string]*types.Outcome),
	}
}

func (c *resultCollector) Record(outcome *types.Outcome) {
	if outcome == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, exists := c.outcomes[outcome.TestID]; exists {
		// One outcome per test is the contract; keep the first and
		// flag the collision instead of silently rewriting history.
		c.log.Warn("Duplicate outcome recorded", "test", outcome.TestID,
			"kept", prev.Status, "discarded", outcome.Status)
		return
	}
	c.outcomes[outcome.TestID] = outcome

	for _, sub := range c.subscribers {
		select {
		case sub <- outcome:
		default:
			c.log.Debug("Subscriber buffer full, dropping outcome", "test", outcome.TestID)
		}
	}
}

func (c *resultCollector) Outcomes() map[string]*types.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(map[string]*types.Outcome, len(c.outcomes))
	for id, o := range c.outcomes {
		snapshot[id] = o
	}
	return snapshot
}

func (c *resultCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outcomes)
}

func (c *resultCollector) Subscribe(buffer int) <-chan *types.Outcome {
	if buffer <= 0 {
		buffer = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan *types.Outcome, buffer)
	if c.closed {
		close(ch)
		return ch
	}
	c.subscribers = append(c.subscribers, ch)
	return ch
}

func (c *resultCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for _, sub := range c.subscribers {
		close(sub)
	}
	c.subscribers = nil
}
