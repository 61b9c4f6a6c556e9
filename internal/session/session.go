// Package session tracks the signed-in state that outlives a single
// request: the last known user type per identity and live subscribers
// to session changes.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/javajoker/bizdir-backend/internal/models"
)

// Session is the resolved view of a signed-in identity.
type Session struct {
	UserID   uuid.UUID       `json:"user_id"`
	Email    string          `json:"email"`
	UserType models.UserType `json:"user_type"`
	IsAdmin  bool            `json:"is_admin"`
	Profile  *models.Profile `json:"profile,omitempty"`
}

// Event is delivered on every sign-in, sign-out and session refresh.
// A nil Session means the identity is signed out.
type Event struct {
	UserID  uuid.UUID `json:"user_id"`
	Session *Session  `json:"session"`
}

// UserTypeCache remembers the user type last seen for an identity. It is a
// fallback for identities whose stored type is empty.
type UserTypeCache struct {
	mu    sync.RWMutex
	types map[uuid.UUID]models.UserType
}

func NewUserTypeCache() *UserTypeCache {
	return &UserTypeCache{types: make(map[uuid.UUID]models.UserType)}
}

func (c *UserTypeCache) Get(id uuid.UUID) (models.UserType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.types[id]
	return t, ok
}

// Set ignores invalid types so the cache never holds garbage.
func (c *UserTypeCache) Set(id uuid.UUID, t models.UserType) {
	if !t.Valid() {
		return
	}
	c.mu.Lock()
	c.types[id] = t
	c.mu.Unlock()
}

func (c *UserTypeCache) Delete(id uuid.UUID) {
	c.mu.Lock()
	delete(c.types, id)
	c.mu.Unlock()
}

// Broker fans session events out to subscribers of one identity.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]chan Event
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[uuid.UUID]map[int]chan Event)}
}

// Subscribe returns a channel of events for userID and a cancel function
// that closes it.
func (b *Broker) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[int]chan Event)
	}
	b.subs[userID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			close(ch)
		})
	}
}

func (b *Broker) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[event.UserID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports how many listeners userID has.
func (b *Broker) Subscribers(userID uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
