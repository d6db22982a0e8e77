package session

import "sync"

const contextSize = 10

// Exchange is one user turn and the AI reply it produced.
type Exchange struct {
	UserMessage string
	UserEmotion string
	AIMessage   string
}

// Context is the per-connection conversation buffer. It is only used for
// local reasoning and is never persisted. Safe for concurrent turns.
type Context struct {
	mu        sync.Mutex
	exchanges []Exchange
}

func NewContext() *Context {
	return &Context{exchanges: make([]Exchange, 0, contextSize)}
}

// Append records an exchange, dropping the oldest past the cap.
func (c *Context) Append(e Exchange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exchanges = append(c.exchanges, e)
	if len(c.exchanges) > contextSize {
		c.exchanges = c.exchanges[len(c.exchanges)-contextSize:]
	}
}

// Recent returns a copy of the retained exchanges, oldest first.
func (c *Context) Recent() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Exchange, len(c.exchanges))
	copy(out, c.exchanges)
	return out
}

func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.exchanges)
}
