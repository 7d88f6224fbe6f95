// Package catalog holds the authoritative in-memory list of events and the
// derived directory views built from it.
//
// Every mutation writes the whole collection back through a storage.Store.
// Persistence failures are logged and swallowed: the in-memory state is
// what the site serves until the process exits.
package catalog

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/thoas/go-funk"
	"github.com/vsa-campus/vsa-site/internal/model"
	"github.com/vsa-campus/vsa-site/internal/storage"
	"go.uber.org/zap"
)

// DefaultKey is the storage key the collection is saved under.
const DefaultKey = "vsa-events"

var (
	// ErrNotFound is returned when no event has the given identifier.
	ErrNotFound = errors.New("event not found")

	// ErrCapacityReached is returned when an increment would exceed maxAttendees.
	ErrCapacityReached = errors.New("event is at capacity")

	// ErrNoAttendees is returned when a decrement would go below zero.
	ErrNoAttendees = errors.New("event has no attendees")

	// ErrCapacityBelowAttendees is returned when an update would set
	// maxAttendees below the current attendee count.
	ErrCapacityBelowAttendees = errors.New("maxAttendees is below the current attendee count")
)

// ChangeKind describes what a mutation did.
type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeUpdated    ChangeKind = "updated"
	ChangeRemoved    ChangeKind = "removed"
	ChangePublished  ChangeKind = "publish_toggled"
	ChangeAttendance ChangeKind = "attendance"
)

// Change is delivered to subscribers after a successful mutation.
// For ChangeRemoved, Event is the record as it was before removal.
type Change struct {
	Kind  ChangeKind
	Event model.Event
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock replaces time.Now. Used by tests to pin the upcoming/past boundary.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(c *Catalog) { c.key = key }
}

// WithSaveTimeout bounds each write to the store.
func WithSaveTimeout(d time.Duration) Option {
	return func(c *Catalog) { c.saveTimeout = d }
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	events []model.Event

	store       storage.Store
	key         string
	now         func() time.Time
	log         *zap.Logger
	saveTimeout time.Duration

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New returns an empty catalog backed by store. A nil store keeps the
// catalog purely in memory.
func New(store storage.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:       store,
		key:         DefaultKey,
		now:         time.Now,
		log:         zap.NewNop(),
		saveTimeout: 5 * time.Second,
		subs:        make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open returns a catalog rehydrated from store. A missing, unreadable or
// undecodable payload leaves the catalog empty.
func Open(ctx context.Context, store storage.Store, opts ...Option) *Catalog {
	c := New(store, opts...)
	if store == nil {
		return c
	}

	data, err := store.Load(ctx, c.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			c.log.Warn("catalog load failed, starting empty", zap.String("key", c.key), zap.Error(err))
		}
		return c
	}

	events, err := decodePayload(data)
	if err != nil {
		c.log.Warn("catalog payload unreadable, starting empty", zap.String("key", c.key), zap.Error(err))
		return c
	}
	c.events = events
	c.log.Info("catalog loaded", zap.String("key", c.key), zap.Int("events", len(events)))
	return c
}

// Subscribe registers fn to be called after every successful mutation.
// Calls happen outside the catalog lock, so fn may query the catalog.
func (c *Catalog) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Catalog) notify(kind ChangeKind, e model.Event) {
	c.subMu.Lock()
	fns := make([]func(Change), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(Change{Kind: kind, Event: clone(e)})
	}
}

// Add appends a new event built from draft. Input is not validated here.
func (c *Catalog) Add(draft model.EventDraft) model.Event {
	var e model.Event
	if err := copier.Copy(&e, &draft); err != nil {
		c.log.Error("copy event draft", zap.String("title", draft.Title), zap.Error(err))
	}
	e = clone(e)

	now := c.now().UTC()
	e.ID = uuid.New().String()
	e.Attendees = 0
	e.CreatedAt = now
	e.UpdatedAt = now

	c.mu.Lock()
	c.events = append(c.events, e)
	c.persistLocked()
	c.mu.Unlock()

	c.notify(ChangeAdded, e)
	return clone(e)
}

// Seed adds drafts only when the catalog is empty. It reports how many
// events were added.
func (c *Catalog) Seed(drafts []model.EventDraft) int {
	if c.Len() > 0 {
		return 0
	}
	for _, d := range drafts {
		c.Add(d)
	}
	return len(drafts)
}

// Update merges patch into the event with the given id. The capacity is
// checked against the attendee count held under the lock.
func (c *Catalog) Update(id string, patch model.EventPatch) (model.Event, error) {
	return c.mutate(id, ChangeUpdated, func(e *model.Event) error {
		applyPatch(e, patch)
		if e.MaxAttendees < e.Attendees {
			return ErrCapacityBelowAttendees
		}
		return nil
	})
}

// TogglePublish flips the published flag.
func (c *Catalog) TogglePublish(id string) (model.Event, error) {
	return c.mutate(id, ChangePublished, func(e *model.Event) error {
		e.IsPublished = !e.IsPublished
		return nil
	})
}

// IncrementAttendees adds one attendee unless the event is full.
func (c *Catalog) IncrementAttendees(id string) (model.Event, error) {
	return c.mutate(id, ChangeAttendance, func(e *model.Event) error {
		if e.Attendees >= e.MaxAttendees {
			return ErrCapacityReached
		}
		e.Attendees++
		return nil
	})
}

// DecrementAttendees removes one attendee unless there are none.
func (c *Catalog) DecrementAttendees(id string) (model.Event, error) {
	return c.mutate(id, ChangeAttendance, func(e *model.Event) error {
		if e.Attendees <= 0 {
			return ErrNoAttendees
		}
		e.Attendees--
		return nil
	})
}

// mutate applies fn to a working copy of the event and commits it only
// when fn succeeds.
func (c *Catalog) mutate(id string, kind ChangeKind, fn func(*model.Event) error) (model.Event, error) {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return model.Event{}, ErrNotFound
	}

	working := clone(c.events[i])
	if err := fn(&working); err != nil {
		current := clone(c.events[i])
		c.mu.Unlock()
		return current, err
	}
	working.ID = c.events[i].ID
	working.CreatedAt = c.events[i].CreatedAt
	working.UpdatedAt = c.now().UTC()

	c.events[i] = working
	c.persistLocked()
	c.mu.Unlock()

	c.notify(kind, working)
	return clone(working), nil
}

// Remove drops the event entirely.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	i := c.indexLocked(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	removed := c.events[i]
	c.events = slices.Delete(c.events, i, i+1)
	c.persistLocked()
	c.mu.Unlock()

	c.notify(ChangeRemoved, removed)
	return nil
}

// Get returns the event with the given id, published or not.
func (c *Catalog) Get(id string) (model.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexLocked(id)
	if i < 0 {
		return model.Event{}, false
	}
	return clone(c.events[i]), true
}

// Len returns the number of stored events, published or not.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// All returns every stored event in insertion order.
func (c *Catalog) All() []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.events)
}

// Upcoming returns published events dated at or after now, soonest first.
func (c *Catalog) Upcoming() []model.Event {
	now := c.now()
	events := c.published(func(e model.Event) bool {
		return !e.Date.Before(now)
	})
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date.Time)
	})
	return events
}

// Past returns published events dated before now, most recent first.
func (c *Catalog) Past() []model.Event {
	now := c.now()
	events := c.published(func(e model.Event) bool {
		return e.Date.Before(now)
	})
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date.Time)
	})
	return events
}

// Featured returns published, featured events in insertion order.
func (c *Catalog) Featured() []model.Event {
	return c.published(func(e model.Event) bool {
		return e.Featured
	})
}

// ByCategory returns published events of the given category in insertion order.
func (c *Catalog) ByCategory(category model.Category) []model.Event {
	return c.published(func(e model.Event) bool {
		return e.Category == category
	})
}

func (c *Catalog) published(match func(model.Event) bool) []model.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	matched := funk.Filter(c.events, func(e model.Event) bool {
		return e.IsPublished && match(e)
	}).([]model.Event)
	return cloneAll(matched)
}

func (c *Catalog) indexLocked(id string) int {
	for i := range c.events {
		if c.events[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the collection. Caller must hold c.mu.
func (c *Catalog) persistLocked() {
	if c.store == nil {
		return
	}
	data, err := encodePayload(c.events)
	if err != nil {
		c.log.Error("catalog encode failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.saveTimeout)
	defer cancel()
	if err := c.store.Save(ctx, c.key, data); err != nil {
		c.log.Error("catalog save failed, keeping in-memory state",
			zap.String("key", c.key),
			zap.Int("events", len(c.events)),
			zap.Error(err),
		)
	}
}

func applyPatch(e *model.Event, p model.EventPatch) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.StartTime != nil {
		e.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = *p.EndTime
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Featured != nil {
		e.Featured = *p.Featured
	}
	if p.MaxAttendees != nil {
		e.MaxAttendees = *p.MaxAttendees
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Highlights != nil {
		e.Highlights = append([]string(nil), (*p.Highlights)...)
	}
	if p.RSVPDeadline != nil {
		e.RSVPDeadline = *p.RSVPDeadline
	}
	if p.IsPublished != nil {
		e.IsPublished = *p.IsPublished
	}
	if p.Organizer != nil {
		org := *p.Organizer
		e.Organizer = &org
	}
	if p.Tags != nil {
		e.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.RegistrationLink != nil {
		e.RegistrationLink = *p.RegistrationLink
	}
	if p.EmbedCode != nil {
		e.EmbedCode = *p.EmbedCode
	}
}

func clone(e model.Event) model.Event {
	if e.Highlights != nil {
		e.Highlights = append([]string(nil), e.Highlights...)
	}
	if e.Tags != nil {
		e.Tags = append([]string(nil), e.Tags...)
	}
	if e.Organizer != nil {
		org := *e.Organizer
		e.Organizer = &org
	}
	return e
}

func cloneAll(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i := range events {
		out[i] = clone(events[i])
	}
	return out
}
