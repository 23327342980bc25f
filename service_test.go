package grouprunner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-grouprunner/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	cfg := NewConfig(discardLogger())
	return cfg
}

func passDescriptor(id string) types.TestDescriptor {
	return types.TestDescriptor{ID: id, Action: func(ctx context.Context) error { return nil }}
}

func TestNewServiceValidation(t *testing.T) {
	_, err := New(nil, StaticDescriptors(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")

	_, err = New(testConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider is required")

	svc, err := New(testConfig(), StaticDescriptors(nil))
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestServiceRunPassingSuite(t *testing.T) {
	descriptors := []types.TestDescriptor{
		passDescriptor("t1"),
		{ID: "t2", Group: "g1", Action: func(ctx context.Context) error { return nil }},
		{ID: "t3", Group: "g1", Action: func(ctx context.Context) error { return nil }},
	}

	svc, err := New(testConfig(), StaticDescriptors(descriptors))
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, types.TestStatusPass, result.Status)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Same(t, result, svc.Result())
}

func TestServiceRunFailingSuite(t *testing.T) {
	descriptors := []types.TestDescriptor{
		passDescriptor("t1"),
		{ID: "t2", Action: func(ctx context.Context) error { return types.NewAssertionError("no") }},
	}

	svc, err := New(testConfig(), StaticDescriptors(descriptors))
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	// The result is still returned alongside the failure error.
	require.NotNil(t, result)
	require.Error(t, err)
	assert.True(t, IsTestFailureError(err))
	assert.Equal(t, types.TestStatusFail, result.Status)
}

func TestServiceRunCollectionErrorIsRuntimeError(t *testing.T) {
	descriptors := []types.TestDescriptor{
		passDescriptor("dup"),
		passDescriptor("dup"),
	}

	svc, err := New(testConfig(), StaticDescriptors(descriptors))
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
}

func TestServiceRunProviderError(t *testing.T) {
	provider := DescriptorProviderFunc(func() ([]types.TestDescriptor, error) {
		return nil, errors.New("collection backend unavailable")
	})

	svc, err := New(testConfig(), provider)
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

func TestServiceStartRunOnce(t *testing.T) {
	svc, err := New(testConfig(), StaticDescriptors([]types.TestDescriptor{passDescriptor("t1")}))
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.True(t, svc.Stopped())
	require.NotNil(t, svc.Result())
	assert.Equal(t, types.TestStatusPass, svc.Result().Status)
}

func TestServiceContinuousMode(t *testing.T) {
	runs := 0
	provider := DescriptorProviderFunc(func() ([]types.TestDescriptor, error) {
		runs++
		return []types.TestDescriptor{passDescriptor("t1")}, nil
	})

	cfg := testConfig()
	cfg.RunOnce = false
	cfg.RunInterval = 20 * time.Millisecond

	svc, err := New(cfg, provider)
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.Stopped())

	// Let at least one periodic re-run happen after the initial run.
	time.Sleep(70 * time.Millisecond)
	svc.Stop()
	svc.Stop() // idempotent

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.WaitForShutdown(ctx))

	assert.True(t, svc.Stopped())
	assert.GreaterOrEqual(t, runs, 2)
}
