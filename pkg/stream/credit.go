package stream

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// QueueCapacity is the event queue depth per connection. The default credit
// pool is sized to match, so the events buffered plus in flight toward the
// consumer stay bounded.
const QueueCapacity = 64

// CreditPool bounds how many callback invocations may be in flight toward
// the consumer at once. One pool is shared by every dispatcher feeding the
// same consumer context. A credit is held from the moment an event is
// dequeued until its callback returns.
type CreditPool struct {
	sem *semaphore.Weighted
}

// NewCreditPool returns a pool with n credits. Sizes below one fall back to
// QueueCapacity.
func NewCreditPool(n int64) *CreditPool {
	if n < 1 {
		n = QueueCapacity
	}
	return &CreditPool{sem: semaphore.NewWeighted(n)}
}

func (p *CreditPool) acquire() {
	// Acquire only fails when the context does; Background never does.
	_ = p.sem.Acquire(context.Background(), 1)
}

func (p *CreditPool) release() {
	p.sem.Release(1)
}
