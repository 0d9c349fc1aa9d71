package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitReturnsWorkingShutdown(t *testing.T) {
	shutdown, err := Init("test-engine")
	require.NoError(t, err)
	defer shutdown(context.Background())

	require.NotNil(t, Tracer())
}

func TestRecordPropagatesFnError(t *testing.T) {
	shutdown, err := Init("test-engine")
	require.NoError(t, err)
	defer shutdown(context.Background())

	wantErr := errors.New("boom")
	err = Record(context.Background(), "core_engine.boot", func(ctx context.Context) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestRecordReturnsNilOnSuccess(t *testing.T) {
	shutdown, err := Init("test-engine")
	require.NoError(t, err)
	defer shutdown(context.Background())

	called := false
	err = Record(context.Background(), "core_engine.mode.continuous", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
}
