package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func changedNow[T any](r *Reader[T]) bool {
	select {
	case <-r.Changed():
		return true
	default:
		return false
	}
}

func TestSlotSeedIsObservedAsFirstChange(t *testing.T) {
	s := NewSlot(42)
	r := s.Reader()

	assert.True(t, changedNow(r), "fresh reader should see the seed value as a change")
	assert.Equal(t, 42, r.Value())
	assert.False(t, changedNow(r), "value already observed")
}

func TestSlotOverwriteKeepsOnlyLatest(t *testing.T) {
	s := NewSlot(0)
	r := s.Reader()
	_ = r.Value()

	s.Set(1)
	s.Set(2)
	s.Set(3)

	assert.True(t, changedNow(r))
	assert.Equal(t, 3, r.Value(), "slow reader should observe only the most recent value")
	assert.False(t, changedNow(r))
}

func TestSlotLateReaderSeesOnlyLatest(t *testing.T) {
	s := NewSlot(0)
	s.Set(1)
	s.Set(2)

	r := s.Reader()
	assert.Equal(t, 2, r.Value())
}

func TestSlotIndependentReaders(t *testing.T) {
	s := NewSlot("a")
	r1 := s.Reader()
	r2 := s.Reader()
	_ = r1.Value()

	s.Set("b")

	assert.Equal(t, "b", r1.Value())
	// r2 never consumed "a"; it still just sees the latest
	assert.Equal(t, "b", r2.Value())
	assert.False(t, changedNow(r1))
	assert.False(t, changedNow(r2))
}

func TestSlotWakesBlockedReader(t *testing.T) {
	s := NewSlot(0)
	r := s.Reader()
	_ = r.Value()

	done := make(chan int)
	go func() {
		<-r.Changed()
		done <- r.Value()
	}()

	s.Set(7)

	select {
	case got := <-done:
		assert.Equal(t, 7, got)
	case <-time.After(time.Second):
		t.Fatal("reader was not woken by Set")
	}
}

func TestSignalOverwritesUnconsumed(t *testing.T) {
	sig := NewSignal[int]()
	sig.Notify(1)
	sig.Notify(2)

	select {
	case got := <-sig.C():
		assert.Equal(t, 2, got, "unconsumed notification should be overwritten")
	default:
		t.Fatal("expected a pending notification")
	}

	select {
	case <-sig.C():
		t.Fatal("signal should be cleared after consumption")
	default:
	}
}

func TestSignalNotifyNeverBlocks(t *testing.T) {
	sig := NewSignal[int]()
	for i := 0; i < 1000; i++ {
		sig.Notify(i)
	}
	assert.Equal(t, 999, <-sig.C())
}
