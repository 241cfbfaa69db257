package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)

	assert.True(t, Maintenance{Status: StatusPending, ScheduledDate: "2026-05-19"}.Overdue(now))
	assert.True(t, Maintenance{Status: StatusInProgress, ScheduledDate: "2026-01-01"}.Overdue(now))
	assert.False(t, Maintenance{Status: StatusPending, ScheduledDate: "2026-05-20"}.Overdue(now))
	assert.False(t, Maintenance{Status: StatusCompleted, ScheduledDate: "2026-01-01"}.Overdue(now))
	assert.False(t, Maintenance{Status: StatusPending}.Overdue(now))
}
