package dyte

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/dyte-io/dyte-go/hostlock"
	"github.com/dyte-io/dyte-go/internal/native"
	"github.com/samber/lo"
)

// bridgeEnv is shared by every object a session creates.
type bridgeEnv struct {
	core   native.Core
	lock   *hostlock.Lock
	log    *slog.Logger
	policy SinkPolicy
}

// ParticipantCache maps participant ids to the single *Participant for each.
//
// The core hands out a new reference for every event that mentions a
// participant; the cache collapses them so that a sink registered on join is
// still attached when the leave for the same participant arrives. The mutex
// only covers map access.
type ParticipantCache struct {
	env *bridgeEnv

	mu sync.Mutex
	m  map[string]*Participant
	// retired holds evicted participants that still had a native sink, so
	// Close can remove it.
	retired []*Participant
	closed  bool
}

func newParticipantCache(env *bridgeEnv) *ParticipantCache {
	return &ParticipantCache{env: env, m: make(map[string]*Participant)}
}

// resolve takes ownership of ref and returns the cached participant with the
// same id, inserting a new one on first sight. A reference that duplicates a
// cached participant is released. After Close the reference is released and
// resolve returns nil.
func (c *ParticipantCache) resolve(ref native.Ref) *Participant {
	return c.adopt(acquire(c.env.core, kindParticipant, ref))
}

// adopt is resolve for a reference that is already owned by h.
func (c *ParticipantCache) adopt(h *Handle) *Participant {
	p := newParticipant(c.env, h)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		p.discard()
		return nil
	}
	if cached, ok := c.m[p.id]; ok {
		c.mu.Unlock()
		p.discard()
		return cached
	}
	c.m[p.id] = p
	c.mu.Unlock()

	c.env.log.Debug("participant cached", "participant", p.id)
	return p
}

// Get returns the cached participant for id.
func (c *ParticipantCache) Get(id string) (*Participant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.m[id]
	return p, ok
}

// Evict removes id from the cache and returns the participant it held, or
// nil. The participant is not closed: holders keep a working object.
func (c *ParticipantCache) Evict(id string) *Participant {
	c.mu.Lock()
	p, ok := c.m[id]
	delete(c.m, id)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	// Checked outside c.mu: installMu can be held across a blocking native call.
	if !p.nativeSinkInstalled() {
		return p
	}
	c.mu.Lock()
	closed := c.closed
	if !closed {
		c.retired = append(c.retired, p)
	}
	c.mu.Unlock()
	if closed {
		// Close has already run and will not see p.
		if err := p.Close(context.Background()); err != nil {
			c.env.log.Warn("closing evicted participant", "participant", p.id, "error", err)
		}
	}
	return p
}

// Len returns the number of cached participants.
func (c *ParticipantCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// IDs returns the cached participant ids in sorted order.
func (c *ParticipantCache) IDs() []string {
	c.mu.Lock()
	ids := lo.Keys(c.m)
	c.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// Participants returns a snapshot of the cached participants.
func (c *ParticipantCache) Participants() []*Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Values(c.m)
}

// Close empties the cache and closes every participant it held, including
// evicted ones whose native sink was still installed. Participants resolved
// afterwards are released at once.
func (c *ParticipantCache) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	ps := append(lo.Values(c.m), c.retired...)
	clear(c.m)
	c.retired = nil
	c.mu.Unlock()

	var errs []error
	for _, p := range ps {
		if err := p.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
