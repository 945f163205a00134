package pubsub

import (
	"errors"
	"sync"
)

type Event interface {
}

type Publisher[E Event] interface {
	PublishEvent(*E) error
	AddSubscriber(Subscriber[E])
	RemoveSubscriber(Subscriber[E])
}

type Subscriber[E Event] interface {
	ConsumeEvent(*E) error
}

// SubscriberFunc adapts a plain function to a Subscriber. Because funcs are not
// comparable, a SubscriberFunc must be passed as a pointer to be removable.
type SubscriberFunc[E Event] func(*E) error

func (f SubscriberFunc[E]) ConsumeEvent(e *E) error {
	return f(e)
}

// SimplePublisher calls ConsumeEvent on each subscriber in registration order, on the
// publishing goroutine. Every subscriber sees the event even if an earlier one fails;
// the failures are joined into the returned error.
type SimplePublisher[E Event] struct {
	mu          sync.RWMutex
	subscribers []Subscriber[E]
}

func NewSimplePublisher[E Event]() *SimplePublisher[E] {
	return &SimplePublisher[E]{
		subscribers: make([]Subscriber[E], 0),
	}
}

func (p *SimplePublisher[E]) PublishEvent(e *E) error {
	p.mu.RLock()
	subscribers := make([]Subscriber[E], len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.RUnlock()

	var errs []error
	for _, s := range subscribers {
		if err := s.ConsumeEvent(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *SimplePublisher[E]) AddSubscriber(s Subscriber[E]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, s)
}

func (p *SimplePublisher[E]) RemoveSubscriber(s Subscriber[E]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subscribers {
		if sub == s {
			p.subscribers = append(p.subscribers[:i], p.subscribers[i+1:]...)
			return
		}
	}
}

func (p *SimplePublisher[E]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscribers)
}
