package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gabapcia/hookwatch/internal/hookeval"
	"github.com/gabapcia/hookwatch/internal/hookproc"
	"github.com/gabapcia/hookwatch/internal/hookregistry"
)

// hookStorageKey is the Redis hash holding every registered chainhook
// specification, keyed by UUID, stored as JSON.
const hookStorageKey = "chainhook:specifications"

// SaveHook implements hookregistry.HookStorage. It upserts the specification
// under its UUID.
func (c *client) SaveHook(ctx context.Context, spec hookeval.Specification) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	return c.conn.HSet(ctx, hookStorageKey, spec.UUID, data).Err()
}

// DeleteHook implements hookregistry.HookStorage. Deleting an unknown UUID
// is a no-op.
func (c *client) DeleteHook(ctx context.Context, uuid string) error {
	return c.conn.HDel(ctx, hookStorageKey, uuid).Err()
}

// ListHooks implements hookregistry.HookStorage. Redis hash iteration order
// is unspecified, so entries are sorted by UUID to keep the active-hook
// order (and therefore trigger order) deterministic across passes.
func (c *client) ListHooks(ctx context.Context) ([]hookeval.Specification, error) {
	entries, err := c.conn.HGetAll(ctx, hookStorageKey).Result()
	if err != nil {
		return nil, err
	}

	hooks := make([]hookeval.Specification, 0, len(entries))
	for uuid, data := range entries {
		var spec hookeval.Specification
		if err := json.Unmarshal([]byte(data), &spec); err != nil {
			return nil, fmt.Errorf("corrupt hook specification %q: %w", uuid, err)
		}
		hooks = append(hooks, spec)
	}

	sort.Slice(hooks, func(i, j int) bool { return hooks[i].UUID < hooks[j].UUID })
	return hooks, nil
}

// ActiveHooks implements hookproc.HookProvider: the active set is simply
// every stored specification.
func (c *client) ActiveHooks(ctx context.Context) ([]hookeval.Specification, error) {
	return c.ListHooks(ctx)
}

var (
	_ hookregistry.HookStorage = (*client)(nil)
	_ hookproc.HookProvider    = (*client)(nil)
)
