package decoder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry reports whether a named element is installed on this system.
// Implementations must be safe for concurrent use. A failed lookup is
// reported as false.
type Registry interface {
	HasElement(name string) bool
}

// RegistryFunc adapts a function to the Registry interface.
type RegistryFunc func(name string) bool

// HasElement calls f(name).
func (f RegistryFunc) HasElement(name string) bool {
	return f(name)
}

// Availability holds one presence flag per catalog entry, index-aligned
// with the catalog it was computed from. Treat it as read-only.
type Availability []bool

// At returns the flag for index i, false when out of range.
func (a Availability) At(i int) bool {
	if i < 0 || i >= len(a) {
		return false
	}
	return a[i]
}

// Count returns the number of available entries.
func (a Availability) Count() int {
	n := 0
	for _, ok := range a {
		if ok {
			n++
		}
	}
	return n
}

type availabilityEntry struct {
	load      func() Availability
	populated atomic.Bool
}

// AvailabilityCache computes decoder availability once per codec and keeps
// it for the lifetime of the cache. There is no invalidation: a decoder
// installed or removed after the first query is not observed until a new
// cache is built (in practice, a process restart).
type AvailabilityCache struct {
	registry Registry
	catalogs *Catalogs
	logger   *slog.Logger
	entries  map[Codec]*availabilityEntry
}

// NewAvailabilityCache creates a cache over the given catalogs. Nothing is
// queried until the first Get for a codec.
func NewAvailabilityCache(registry Registry, catalogs *Catalogs, logger *slog.Logger) *AvailabilityCache {
	if logger == nil {
		logger = slog.Default()
	}
	if catalogs == nil {
		catalogs = DefaultCatalogs()
	}

	c := &AvailabilityCache{
		registry: registry,
		catalogs: catalogs,
		logger:   logger,
		entries:  make(map[Codec]*availabilityEntry, len(catalogs.order)),
	}

	for _, codec := range catalogs.order {
		entry := &availabilityEntry{}
		defs := catalogs.definitions(codec)
		entry.load = sync.OnceValue(func() Availability {
			avail := c.query(codec, defs)
			entry.populated.Store(true)
			return avail
		})
		c.entries[codec] = entry
	}

	return c
}

// Get returns the availability vector for a codec, querying the registry
// for every catalog entry on first use. Concurrent first callers block until
// the single computation finishes and all observe the same vector.
// Returns nil for a codec without a catalog.
func (c *AvailabilityCache) Get(codec Codec) Availability {
	entry, ok := c.entries[codec]
	if !ok {
		return nil
	}
	return entry.load()
}

// Populated reports whether the availability for codec has been computed.
func (c *AvailabilityCache) Populated(codec Codec) bool {
	entry, ok := c.entries[codec]
	return ok && entry.populated.Load()
}

// Snapshot returns the availability of every codec already computed.
// It never triggers a registry query.
func (c *AvailabilityCache) Snapshot() map[Codec]Availability {
	out := make(map[Codec]Availability, len(c.entries))
	for codec, entry := range c.entries {
		if entry.populated.Load() {
			out[codec] = entry.load()
		}
	}
	return out
}

// Catalogs returns the catalogs the cache was built over.
func (c *AvailabilityCache) Catalogs() *Catalogs {
	return c.catalogs
}

// Warm populates every codec concurrently. The cache stays usable on demand
// without it; Warm only moves the registry cost to a convenient moment.
// A cancelled context stops scheduling codecs that have not started yet.
func (c *AvailabilityCache) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, codec := range c.catalogs.order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.Get(codec)
			return nil
		})
	}
	return g.Wait()
}

func (c *AvailabilityCache) query(codec Codec, defs []Definition) Availability {
	start := time.Now()
	avail := make(Availability, len(defs))
	for i, def := range defs {
		if c.registry != nil {
			avail[i] = c.registry.HasElement(def.Name)
		}
	}

	c.logger.Debug("decoder availability computed",
		slog.String("codec", codec.String()),
		slog.Int("decoders", len(defs)),
		slog.Int("available", avail.Count()),
		slog.Duration("duration", time.Since(start)),
	)
	return avail
}
