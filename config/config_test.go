package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotePriorityCycles(t *testing.T) {
	p := PriorityFirst

	p = p.Next()
	assert.Equal(t, PriorityLast, p, "should advance to next variant")

	p = p.Next()
	assert.Equal(t, PriorityLow, p, "should advance to next variant")

	p = p.Next()
	assert.Equal(t, PriorityHigh, p, "should advance to next variant")

	p = p.Next()
	assert.Equal(t, PriorityFirst, p, "should wrap around to first variant")
}

func TestChordCleanupCycles(t *testing.T) {
	c := CleanupOff

	c = c.Next()
	assert.Equal(t, CleanupThirtySecondNote, c)

	c = c.Next()
	assert.Equal(t, CleanupOff, c, "should wrap around")
}

func TestChordCleanupEnabled(t *testing.T) {
	assert.True(t, CleanupThirtySecondNote.Enabled(), "should be enabled")
	assert.False(t, CleanupOff.Enabled(), "should be disabled")
}

func TestChordCleanupDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), CleanupOff.Duration())
	assert.Equal(t, 62500*time.Microsecond, CleanupThirtySecondNote.Duration())
}
