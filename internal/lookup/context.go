package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/go-logr/logr"
)

// ContextFile is the default name of the lookup context file.
const ContextFile = "platform.context.json"

// Context holds cached lookup results keyed by query.
type Context struct {
	path    string
	entries map[string]json.RawMessage
	dirty   bool
}

// LoadContext reads the context file at path. A missing file yields an
// empty context.
func LoadContext(path string) (*Context, error) {
	c := &Context{path: path, entries: make(map[string]json.RawMessage)}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("parsing context file %s: %w", path, err)
	}
	return c, nil
}

// Path returns the file the context is saved to.
func (c *Context) Path() string {
	return c.path
}

// Keys returns the cached keys, sorted.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get decodes the entry for key into out and reports whether it exists.
func (c *Context) Get(key string, out any) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("context entry %s: %w", key, err)
	}
	return true, nil
}

// Set records an entry.
func (c *Context) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("context entry %s: %w", key, err)
	}
	c.entries[key] = data
	c.dirty = true
	return nil
}

// Delete removes an entry.
func (c *Context) Delete(key string) {
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.dirty = true
	}
}

// Clear removes every entry.
func (c *Context) Clear() {
	if len(c.entries) > 0 {
		c.entries = make(map[string]json.RawMessage)
		c.dirty = true
	}
}

// Save writes the context file if it changed.
func (c *Context) Save() error {
	if !c.dirty {
		return nil
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing context file: %w", err)
	}
	c.dirty = false
	return nil
}

// Cached serves lookups from a context and records live results in it.
// A nil Provider disables live lookups.
type Cached struct {
	Context  *Context
	Provider HostedZoneProvider
}

// HostedZone implements HostedZoneProvider.
func (c *Cached) HostedZone(ctx context.Context, q HostedZoneQuery) (HostedZone, error) {
	log := logr.FromContextOrDiscard(ctx)
	key := q.Key()

	var zone HostedZone
	ok, err := c.Context.Get(key, &zone)
	if err != nil {
		return HostedZone{}, err
	}
	if ok {
		log.V(1).Info("hosted zone from context", "key", key, "id", zone.ID)
		return zone, nil
	}

	if c.Provider == nil {
		return HostedZone{}, fmt.Errorf("%w: %s is not in %s", ErrLookupDisabled, key, c.Context.Path())
	}
	zone, err = c.Provider.HostedZone(ctx, q)
	if err != nil {
		return HostedZone{}, err
	}
	if err := c.Context.Set(key, zone); err != nil {
		return HostedZone{}, err
	}
	log.Info("cached hosted zone lookup", "key", key, "id", zone.ID)
	return zone, nil
}
