package decoder

import (
	"log/slog"

	"github.com/jmylchreest/decodechain/internal/codec"
)

// Resolution kinds reported to observers.
const (
	KindHardware = "hardware"
	KindSoftware = "software"
	KindFallback = "fallback"
)

// ResolutionObserver is notified of every resolution outcome.
type ResolutionObserver interface {
	ObserveResolution(codec Codec, kind string)
}

// Resolution is the outcome of picking a decoder for a catalog.
type Resolution struct {
	Codec Codec `json:"codec"`
	// Descriptor is the element string handed to the pipeline builder.
	Descriptor string `json:"descriptor"`
	// Decoder is the chosen definition, nil when the fallback element is used.
	Decoder *Definition `json:"decoder,omitempty"`
	// Fallback is true when no catalog entry was available.
	Fallback bool `json:"fallback"`
}

// Kind returns the resolution kind (hardware, software or fallback).
func (r Resolution) Kind() string {
	if r.Fallback || r.Decoder == nil {
		return KindFallback
	}
	return r.Decoder.Kind()
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithObserver registers an observer for resolution outcomes.
func WithObserver(o ResolutionObserver) ResolverOption {
	return func(r *Resolver) {
		r.observer = o
	}
}

// Resolver picks the decoding element to use when building a pipeline.
type Resolver struct {
	cache    *AvailabilityCache
	logger   *slog.Logger
	observer ResolutionObserver
}

// NewResolver creates a resolver backed by the availability cache.
func NewResolver(cache *AvailabilityCache, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{cache: cache, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindAvailable returns the element descriptor of the first available
// decoder in catalog order, or FallbackElement when none is available.
// Availability flags are index-aligned with the cache's own catalog, so a
// catalog whose entries differ from it is resolved against the cached one.
func (r *Resolver) FindAvailable(catalog Catalog) string {
	return r.Resolve(catalog).Descriptor
}

// Resolve is FindAvailable with the chosen definition attached.
func (r *Resolver) Resolve(catalog Catalog) Resolution {
	if cached, ok := r.cache.Catalogs().Get(catalog.Codec); ok && !sameDecoders(cached, catalog) {
		r.logger.Debug("catalog differs from cached catalog, resolving against cached entries",
			slog.String("codec", catalog.Codec.String()),
			slog.Int("given", catalog.Len()),
			slog.Int("cached", cached.Len()),
		)
		catalog = cached
	}
	avail := r.cache.Get(catalog.Codec)

	for i := range catalog.Decoders {
		if !avail.At(i) {
			continue
		}
		def := catalog.Decoders[i]
		r.logger.Info("using "+def.Description+" decoder",
			slog.String("codec", catalog.Codec.String()),
			slog.String("decoder", def.Name),
			slog.String("kind", def.Kind()),
		)
		r.observe(catalog.Codec, def.Kind())
		return Resolution{
			Codec:      catalog.Codec,
			Descriptor: def.ElementDescriptor(),
			Decoder:    &def,
		}
	}

	r.logger.Warn("no specific decoder found, using decodebin",
		slog.String("codec", catalog.Codec.String()),
		slog.Int("candidates", len(catalog.Decoders)),
	)
	r.observe(catalog.Codec, KindFallback)
	return Resolution{
		Codec:      catalog.Codec,
		Descriptor: FallbackElement,
		Fallback:   true,
	}
}

// ResolveCodec resolves the catalog registered for codec.
// Returns false when no catalog exists for it.
func (r *Resolver) ResolveCodec(c Codec) (Resolution, bool) {
	catalog, ok := r.cache.Catalogs().Get(c)
	if !ok {
		return Resolution{}, false
	}
	return r.Resolve(catalog), true
}

// FindAvailableForFormat resolves the decoder for a camera pixel format.
// Returns false for raw or unrecognized formats, which need no decoder.
func (r *Resolver) FindAvailableForFormat(pixelFormat string) (string, bool) {
	c, ok := codec.ParsePixelFormat(pixelFormat)
	if !ok {
		return "", false
	}
	catalog, ok := r.cache.Catalogs().Get(c)
	if !ok {
		return "", false
	}
	return r.FindAvailable(catalog), true
}

func sameDecoders(a, b Catalog) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Decoders {
		if a.Decoders[i].Name != b.Decoders[i].Name {
			return false
		}
	}
	return true
}

func (r *Resolver) observe(c Codec, kind string) {
	if r.observer != nil {
		r.observer.ObserveResolution(c, kind)
	}
}
