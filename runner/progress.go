package runner

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/ethereum/go-ethereum/log"
)

// ProgressIndicator interface for UI updates
type ProgressIndicator interface {
	StartGroup(groupKey string, totalTests int)
	StartTest(testID string)
	UpdateTest(testID string, status types.TestStatus)
	CompleteGroup(groupKey string)
}

// noOpProgressIndicator provides a no-op implementation of ProgressIndicator
type noOpProgressIndicator struct{}

// NewNoOpProgressIndicator creates a progress indicator that does nothing
func NewNoOpProgressIndicator() ProgressIndicator {
	return &noOpProgressIndicator{}
}

func (n *noOpProgressIndicator) StartGroup(groupKey string, totalTests int)        {}
func (n *noOpProgressIndicator) StartTest(testID string)                           {}
func (n *noOpProgressIndicator) UpdateTest(testID string, status types.TestStatus) {}
func (n *noOpProgressIndicator) CompleteGroup(groupKey string)                     {}

// consoleProgressIndicator logs periodic progress updates while a run is in
// flight. Singleton groups for ungrouped tests are common, so group
// start/complete transitions are logged at debug level only.
type consoleProgressIndicator struct {
	logger log.Logger
	ticker *time.Ticker
	stopCh chan struct{}
	mu     sync.RWMutex

	currentGroup   string
	completedTests int
	totalTests     int
	groupStartTime time.Time

	// Track currently running tests
	runningTests map[string]time.Time // test ID -> start time
}

// NewConsoleProgressIndicator creates a progress indicator that shows updates in the console
func NewConsoleProgressIndicator(logger log.Logger, updateInterval time.Duration) ProgressIndicator {
	if updateInterval == 0 {
		updateInterval = 30 * time.Second // Default to 30 seconds
	}

	indicator := &consoleProgressIndicator{
		logger:       logger,
		ticker:       time.NewTicker(updateInterval),
		stopCh:       make(chan struct{}),
		runningTests: make(map[string]time.Time),
	}

	// Start the progress reporting goroutine
	go indicator.progressReporter()

	return indicator
}

func (c *consoleProgressIndicator) StartGroup(groupKey string, totalTests int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentGroup = groupKey
	c.totalTests += totalTests
	c.groupStartTime = time.Now()

	c.logger.Debug("Starting group", "group", groupKey, "groupTests", totalTests)
}

// StartTest tracks when a test starts running
func (c *consoleProgressIndicator) StartTest(testID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runningTests[testID] = time.Now()
	c.logger.Debug("Test started", "test", testID, "runningTests", len(c.runningTests))
}

func (c *consoleProgressIndicator) UpdateTest(testID string, status types.TestStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.runningTests, testID)
	c.completedTests++

	// Log individual test completion at debug level to avoid spam
	c.logger.Debug("Test completed", "test", testID, "status", status,
		"completed", c.completedTests, "total", c.totalTests, "runningTests", len(c.runningTests))
}

func (c *consoleProgressIndicator) CompleteGroup(groupKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := time.Since(c.groupStartTime).Truncate(time.Millisecond)
	c.logger.Debug("Completed group", "group", groupKey, "completed", c.completedTests, "duration", duration)
	c.currentGroup = ""
}

// progressReporter runs in a goroutine and periodically reports progress
func (c *consoleProgressIndicator) progressReporter() {
	for {
		select {
		case <-c.ticker.C:
			c.reportProgress()
		case <-c.stopCh:
			return
		}
	}
}

func (c *consoleProgressIndicator) reportProgress() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	detailsStr := formatRunningTests(c.runningTests, 3)

	// Calculate completion percentage
	var percentComplete float64
	if c.totalTests > 0 {
		percentComplete = float64(c.completedTests) * 100.0 / float64(c.totalTests)
	}

	c.logger.Info("Progress update",
		"group", c.currentGroup,
		"completed", c.completedTests,
		"total", c.totalTests,
		"percent", fmt.Sprintf("%.1f%%", percentComplete),
		"numRunning", len(c.runningTests),
		"longestRunning", detailsStr,
	)
}

// Stop stops the progress indicator
func (c *consoleProgressIndicator) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	close(c.stopCh)
}

// Helper function that formats running tests into a display string
func formatRunningTests(runningTests map[string]time.Time, maxShow int) string {
	if len(runningTests) == 0 {
		return ""
	}

	// Sort running tests by duration (longest first)
	type runningTest struct {
		id       string
		duration time.Duration
	}

	var running []runningTest
	now := time.Now()
	for testID, startTime := range runningTests {
		running = append(running, runningTest{
			id:       testID,
			duration: now.Sub(startTime),
		})
	}

	sort.Slice(running, func(i, j int) bool {
		return running[i].duration > running[j].duration
	})

	// Format running tests string (limit to maxShow)
	var runningStrs []string
	for i, test := range running {
		if i >= maxShow {
			break
		}
		duration := test.duration.Truncate(time.Second)
		runningStrs = append(runningStrs, fmt.Sprintf("%s (%v)", test.id, duration))
	}

	// Add indicator for additional tests not shown
	if len(running) > maxShow {
		runningStrs = append(runningStrs, fmt.Sprintf("+%d more", len(running)-maxShow))
	}

	return strings.Join(runningStrs, ", ")
}
