//go:build !gstreamer

package registry

import "fmt"

// GStreamerAvailable reports whether this binary was built with the
// in-process GStreamer registry.
const GStreamerAvailable = false

// GStreamer is unavailable in builds without the gstreamer tag.
type GStreamer struct{}

// NewGStreamer always fails without the gstreamer build tag.
func NewGStreamer() (*GStreamer, error) {
	return nil, fmt.Errorf("%w: built without the gstreamer tag", ErrUnsupportedBackend)
}

// HasElement always reports false.
func (GStreamer) HasElement(string) bool {
	return false
}
