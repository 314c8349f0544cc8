package store

import (
	"sync"
	"time"

	"github.com/itchan-dev/aurum/shared/domain"
)

type IdGenerator interface {
	Next() domain.MsgId
}

// ClockIds hands out millisecond timestamps as message ids. Two calls in the
// same millisecond would collide, so a repeated or backwards clock reading is
// bumped to one past the last id issued.
type ClockIds struct {
	mu   sync.Mutex
	now  func() time.Time
	last domain.MsgId
}

func NewClockIds(now func() time.Time) *ClockIds {
	if now == nil {
		now = time.Now
	}
	return &ClockIds{now: now}
}

func (c *ClockIds) Next() domain.MsgId {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
