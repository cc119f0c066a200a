//go:build gstreamer

package registry

import (
	"sync"

	"github.com/tinyzimmer/go-gst/gst"
)

// GStreamerAvailable reports whether this binary was built with the
// in-process GStreamer registry.
const GStreamerAvailable = true

var gstInitOnce sync.Once

// GStreamer queries the in-process GStreamer plugin registry.
type GStreamer struct{}

// NewGStreamer initializes GStreamer (once per process) and returns a
// registry backed by element factory lookups.
func NewGStreamer() (*GStreamer, error) {
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &GStreamer{}, nil
}

// HasElement reports whether an element factory named name is registered.
func (GStreamer) HasElement(name string) bool {
	return gst.Find(name) != nil
}
