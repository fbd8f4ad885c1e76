package client

import "sync"

// StatusCell is the single flag the two loops share: the outcome of the most
// recent push ("starting", "online" or "error"). It is the only state the
// loops coordinate on.
type StatusCell struct {
	mu    sync.Mutex
	value string
}

func NewStatusCell() *StatusCell {
	return &StatusCell{value: "starting"}
}

func (c *StatusCell) Set(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
}

func (c *StatusCell) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}
