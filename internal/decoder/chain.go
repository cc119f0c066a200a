package decoder

import (
	"strings"

	"github.com/jmylchreest/decodechain/internal/codec"
)

// FallbackState is the status of one decoder in a fallback chain.
// The zero value is StateUnknown, which ChainBuilder never produces; every
// Status it builds carries one of the other three constants.
type FallbackState string

// Fallback states.
const (
	// StateUnknown is the zero value and marks an uninitialized status.
	StateUnknown FallbackState = ""
	// StateSelected marks the decoder active in the inspected pipeline.
	StateSelected FallbackState = "selected"
	// StateAvailable marks a decoder present on the system but not active.
	StateAvailable FallbackState = "available"
	// StateUnavailable marks a decoder absent from the system.
	StateUnavailable FallbackState = "unavailable"
)

// String returns the string representation of the state.
func (s FallbackState) String() string {
	return string(s)
}

// Valid reports whether s is one of the defined states.
func (s FallbackState) Valid() bool {
	switch s {
	case StateSelected, StateAvailable, StateUnavailable:
		return true
	default:
		return false
	}
}

// Status is one row of a fallback chain.
type Status struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Hardware    bool          `json:"hardware"`
	State       FallbackState `json:"state"`
}

// ChainBuilder reconstructs fallback chains for diagnostics.
type ChainBuilder struct {
	cache *AvailabilityCache
}

// NewChainBuilder creates a chain builder over the availability cache.
func NewChainBuilder(cache *AvailabilityCache) *ChainBuilder {
	return &ChainBuilder{cache: cache}
}

// BuildChain returns the status of every catalog entry for the codec behind
// pixelFormat, in catalog order. An empty pipeline means no pipeline is
// running, so nothing is marked selected. Raw, unknown or empty pixel formats
// yield an empty chain.
//
// The result is built fresh on every call; availability comes from the
// cache and is computed on first use.
func (b *ChainBuilder) BuildChain(pixelFormat, pipeline string) []Status {
	c, ok := codec.ParsePixelFormat(pixelFormat)
	if !ok {
		return []Status{}
	}
	return b.BuildCodecChain(c, pipeline)
}

// BuildCodecChain is BuildChain for an already-normalized codec.
func (b *ChainBuilder) BuildCodecChain(c Codec, pipeline string) []Status {
	defs := b.cache.Catalogs().definitions(c)
	if len(defs) == 0 {
		return []Status{}
	}

	avail := b.cache.Get(c)
	active := ActiveIndex(defs, pipeline)

	chain := make([]Status, len(defs))
	for i, def := range defs {
		var state FallbackState
		switch {
		case i == active:
			state = StateSelected
		case avail.At(i):
			state = StateAvailable
		default:
			state = StateUnavailable
		}
		chain[i] = Status{
			Name:        def.Name,
			Description: def.Description,
			Hardware:    def.Hardware,
			State:       state,
		}
	}
	return chain
}

// ActiveIndex returns the index of the first definition whose name appears
// in pipeline followed by a space, followed by '!', or at the very end.
// Returns -1 when none matches or pipeline is empty.
//
// This is plain substring matching: a name that is a suffix of another
// element's name can match inside it (e.g. "264dec " inside "va264dec ").
func ActiveIndex(defs []Definition, pipeline string) int {
	if pipeline == "" {
		return -1
	}
	for i, def := range defs {
		if matchesElement(pipeline, def.Name) {
			return i
		}
	}
	return -1
}

func matchesElement(pipeline, name string) bool {
	return strings.Contains(pipeline, name+" ") ||
		strings.Contains(pipeline, name+"!") ||
		strings.HasSuffix(pipeline, name)
}

// Selected returns the selected entry of a chain, if any.
func Selected(chain []Status) (Status, bool) {
	for _, s := range chain {
		if s.State == StateSelected {
			return s, true
		}
	}
	return Status{}, false
}
