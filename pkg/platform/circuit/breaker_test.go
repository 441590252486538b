package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestBreaker(t *testing.T) {
	t.Run("opens after consecutive failures", func(t *testing.T) {
		b := New("test", WithFailureThreshold(2))
		assert.Equal(t, NoTransition, b.Record(errBoom))
		assert.Equal(t, Opened, b.Record(errBoom))
		assert.Equal(t, StateOpen, b.State())
		assert.Equal(t, NoTransition, b.Record(errBoom))
	})

	t.Run("success resets the failure streak while closed", func(t *testing.T) {
		b := New("test", WithFailureThreshold(2))
		b.Record(errBoom)
		b.Record(nil)
		assert.Equal(t, NoTransition, b.Record(errBoom))
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("closes after consecutive successes", func(t *testing.T) {
		b := New("test", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.Record(errBoom)
		assert.Equal(t, NoTransition, b.Record(nil))
		assert.Equal(t, Closed, b.Record(nil))
		assert.Equal(t, "closed", b.State().String())
	})

	t.Run("failure while open restarts recovery", func(t *testing.T) {
		b := New("test", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.Record(errBoom)
		b.Record(nil)
		b.Record(errBoom)
		assert.Equal(t, NoTransition, b.Record(nil))
		assert.Equal(t, StateOpen, b.State())
	})

	t.Run("ignores non-positive thresholds", func(t *testing.T) {
		b := New("test", WithFailureThreshold(0), nil)
		for range 4 {
			b.Record(errBoom)
		}
		assert.Equal(t, StateClosed, b.State())
		assert.Equal(t, "test", b.Name())
	})
}
