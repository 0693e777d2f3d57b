package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"projectflow_reminder/internal/domain/reminder"
)

// RemindedCacheKey is the key-value slot holding the reminded identifiers.
const RemindedCacheKey = "projectflow_reminded_ids"

// ErrCacheCorrupt is logged when the persisted identifier list cannot be decoded.
var ErrCacheCorrupt = errors.New("reminder cache is corrupt")

// Slot is the durable client-local key-value storage behind the cache.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// RemindedCache is the persisted set of reminder identifiers already notified.
// Entries never expire; Reset is the only way to clear them.
type RemindedCache struct {
	mu    sync.Mutex
	slot  Slot
	log   *logrus.Entry
	ids   map[reminder.ID]struct{}
	order []reminder.ID
}

// LoadRemindedCache reads the cache from the slot. A missing, unreadable, or
// corrupt value yields an empty cache.
func LoadRemindedCache(ctx context.Context, slot Slot, log *logrus.Entry) *RemindedCache {
	c := &RemindedCache{
		slot: slot,
		log:  log.WithField("component", "reminded_cache"),
		ids:  make(map[reminder.ID]struct{}),
	}

	raw, ok, err := slot.Get(ctx, RemindedCacheKey)
	if err != nil {
		c.log.WithError(err).Warn("Failed to read reminder cache, starting empty")
		return c
	}
	if !ok {
		return c
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.log.WithError(errors.Join(ErrCacheCorrupt, err)).Warn("Discarding reminder cache")
		return c
	}
	for _, s := range stored {
		c.insertLocked(reminder.ID(s))
	}
	c.log.WithField("count", len(c.order)).Debug("Reminder cache loaded")
	return c
}

func (c *RemindedCache) Has(id reminder.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.ids[id]
	return ok
}

// Add records id and persists the whole set. Adding a present id is a no-op.
func (c *RemindedCache) Add(ctx context.Context, id reminder.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.insertLocked(id) {
		return
	}

	raw, err := json.Marshal(c.order)
	if err != nil {
		c.log.WithError(err).Error("Failed to encode reminder cache")
		return
	}
	if err := c.slot.Put(ctx, RemindedCacheKey, raw); err != nil {
		c.log.WithError(err).WithField("reminder_id", id).Error("Failed to persist reminder cache")
	}
}

// Reset forgets every identifier, in memory and in the slot.
func (c *RemindedCache) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[reminder.ID]struct{})
	c.order = nil
	return c.slot.Delete(ctx, RemindedCacheKey)
}

func (c *RemindedCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

func (c *RemindedCache) insertLocked(id reminder.ID) bool {
	if _, ok := c.ids[id]; ok {
		return false
	}
	c.ids[id] = struct{}{}
	c.order = append(c.order, id)
	return true
}
