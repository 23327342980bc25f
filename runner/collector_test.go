package runner

import (
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomeFor(id string, status types.TestStatus) *types.Outcome {
	now := time.Now()
	return &types.Outcome{
		TestID: id,
		Status: status,
		Start:  now,
		End:    now,
	}
}

func TestCollectorRecordAndSnapshot(t *testing.T) {
	collector := NewResultCollector(testLogger())

	collector.Record(outcomeFor("t1", types.TestStatusPass))
	collector.Record(outcomeFor("t2", types.TestStatusFail))
	collector.Record(nil) // ignored

	assert.Equal(t, 2, collector.Len())

	outcomes := collector.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, types.TestStatusPass, outcomes["t1"].Status)
	assert.Equal(t, types.TestStatusFail, outcomes["t2"].Status)

	// Snapshot is detached from the collector's internal map.
	delete(outcomes, "t1")
	assert.Equal(t, 2, collector.Len())
}

func TestCollectorKeepsFirstOutcomePerTest(t *testing.T) {
	collector := NewResultCollector(testLogger())

	collector.Record(outcomeFor("t1", types.TestStatusPass))
	collector.Record(outcomeFor("t1", types.TestStatusFail))

	assert.Equal(t, 1, collector.Len())
	assert.Equal(t, types.TestStatusPass, collector.Outcomes()["t1"].Status)
}

func TestCollectorSubscribeStreamsInOrder(t *testing.T) {
	collector := NewResultCollector(testLogger())
	stream := collector.Subscribe(4)

	collector.Record(outcomeFor("t1", types.TestStatusPass))
	collector.Record(outcomeFor("t2", types.TestStatusSkip))
	collector.Close()

	var ids []string
	for o := range stream {
		ids = append(ids, o.TestID)
	}
	assert.Equal(t, []string{"t1", "t2"}, ids)
}

func TestCollectorSlowSubscriberDoesNotBlockRecord(t *testing.T) {
	collector := NewResultCollector(testLogger())
	stream := collector.Subscribe(1) // nobody reads from it

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			collector.Record(outcomeFor(string(rune('a'+i)), types.TestStatusPass))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a slow subscriber")
	}
	assert.Equal(t, 10, collector.Len())

	// The subscriber still got the first outcome its buffer had room for.
	collector.Close()
	first, ok := <-stream
	require.True(t, ok)
	assert.Equal(t, "a", first.TestID)
}

func TestCollectorSubscribeAfterClose(t *testing.T) {
	collector := NewResultCollector(testLogger())
	collector.Close()
	collector.Close() // idempotent

	stream := collector.Subscribe(1)
	_, ok := <-stream
	assert.False(t, ok)
}
