package studio

import (
	"sync"
	"time"
)

func newChats(factory Factory, idle time.Duration) *chats {
	return &chats{
		factory: factory,
		idle:    idle,
		now:     time.Now,
		open:    make(map[int64]*chat),
	}
}

// chats holds one studio per chat and closes the ones left idle.
type chats struct {
	mu      sync.Mutex
	factory Factory
	idle    time.Duration
	now     func() time.Time
	open    map[int64]*chat
}

type chat struct {
	studio *Studio
	used   time.Time
}

func (c *chats) get(id int64) (*Studio, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch, ok := c.open[id]; ok {
		ch.used = c.now()
		return ch.studio, nil
	}

	s, err := c.factory(id)
	if err != nil {
		return nil, err
	}
	c.open[id] = &chat{studio: s, used: c.now()}
	return s, nil
}

// evict closes studios unused for longer than the idle period and returns
// their chat ids.
func (c *chats) evict() []int64 {
	if c.idle <= 0 {
		return nil
	}

	c.mu.Lock()
	var idle []*Studio
	var ids []int64
	deadline := c.now().Add(-c.idle)
	for id, ch := range c.open {
		if ch.used.Before(deadline) {
			idle = append(idle, ch.studio)
			ids = append(ids, id)
			delete(c.open, id)
		}
	}
	c.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	return ids
}

func (c *chats) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.open)
}

func (c *chats) closeAll() {
	c.mu.Lock()
	open := c.open
	c.open = make(map[int64]*chat)
	c.mu.Unlock()

	for _, ch := range open {
		ch.studio.Close()
	}
}
