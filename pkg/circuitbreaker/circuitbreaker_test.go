package circuitbreaker_test

import (
	"errors"
	"testing"
	"time"

	"github.com/biblioenspy/biblio-service/pkg/circuitbreaker"
	"github.com/stretchr/testify/require"
)

func Test_CircuitBreaker_Call(t *testing.T) {
	failing := func() error { return errors.New("upstream error") }
	successful := func() error { return nil }

	cb := circuitbreaker.New(10, 50*time.Millisecond, 0.5, 2)

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Call(successful))
	}

	// push the failure rate over the 50% percentile
	for i := 0; i < 5; i++ {
		require.Error(t, cb.Call(failing))
	}

	// open: calls short-circuit
	err := cb.Call(successful)
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)

	// half-open after the timeout, closes again after enough successes
	time.Sleep(60 * time.Millisecond)
	for i := 0; i < 4; i++ {
		require.NoError(t, cb.Call(successful))
	}
	require.NoError(t, cb.Call(successful))

	// a failure while half-open re-opens immediately
	cb.Reset()
	for i := 0; i < 10; i++ {
		require.Error(t, cb.Call(failing))
	}
	require.ErrorIs(t, cb.Call(successful), circuitbreaker.ErrOpen)
}
