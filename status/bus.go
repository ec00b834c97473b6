// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package status

import (
	"sync"
	"time"

	"github.com/PastaPastaPasta/dash-evo-tool/utils/timer/mockable"
)

// DefaultTTL is how long a posted message stays visible without an explicit
// dismissal.
const DefaultTTL = 5 * time.Second

type Severity uint8

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Message is one user-facing status line.
type Message struct {
	Text     string
	Severity Severity
	PostedAt time.Time
}

// Bus is a single-slot, bounded-lifetime notification surface. Posting
// overwrites whatever is pending; messages are never queued. The current
// message expires once its age exceeds the TTL.
type Bus struct {
	clock *mockable.Clock
	ttl   time.Duration

	mu      sync.Mutex
	current *Message
}

func NewBus(clock *mockable.Clock, ttl time.Duration) *Bus {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Bus{
		clock: clock,
		ttl:   ttl,
	}
}

// Post replaces the pending message.
func (b *Bus) Post(text string, severity Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &Message{
		Text:     text,
		Severity: severity,
		PostedAt: b.clock.Time(),
	}
}

// Current returns the live message and its age. Expiry is checked here:
// a message older than the TTL is dropped and not returned.
func (b *Bus) Current() (Message, time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return Message{}, 0, false
	}
	age := b.clock.Time().Sub(b.current.PostedAt)
	if age > b.ttl {
		b.current = nil
		return Message{}, 0, false
	}
	return *b.current, age, true
}

// Dismiss drops the pending message, if any.
func (b *Bus) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
}
