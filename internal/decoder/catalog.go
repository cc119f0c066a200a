// Package decoder selects GStreamer decoding elements for compressed camera
// formats and reports which entry of a codec's fallback chain is active in a
// running pipeline.
//
// The preference order of each catalog is policy:
//   - MJPEG lists software decoders first. Many webcams emit non-standard
//     JPEG that hardware decoders mishandle.
//   - H.264 and H.265 list hardware decoders first. Both are expensive to
//     decode on the CPU.
package decoder

import "github.com/jmylchreest/decodechain/internal/codec"

// Codec identifies a catalog. It is the canonical compressed codec.
type Codec = codec.Video

// Codec constants.
const (
	CodecMJPEG = codec.VideoMJPEG
	CodecH264  = codec.VideoH264
	CodecH265  = codec.VideoH265
)

// FallbackElement is returned when no catalog entry is available.
// decodebin negotiates a decoder on its own at pipeline build time.
const FallbackElement = "decodebin"

// Definition describes one candidate decoding element.
type Definition struct {
	// Name is the GStreamer element factory name (e.g. "jpegdec").
	Name string `json:"name"`
	// Description is a human-readable label for display.
	Description string `json:"description"`
	// Properties are appended to the element when formatting (e.g. "max-errors=-1").
	Properties string `json:"properties,omitempty"`
	// Hardware is true for hardware-accelerated decoders.
	Hardware bool `json:"hardware"`
}

// ElementDescriptor formats the definition as a pipeline element string:
// the name alone, or the name followed by a space and its properties.
func (d Definition) ElementDescriptor() string {
	if d.Properties == "" {
		return d.Name
	}
	return d.Name + " " + d.Properties
}

// Kind returns "hardware" or "software".
func (d Definition) Kind() string {
	if d.Hardware {
		return "hardware"
	}
	return "software"
}

// AsElementDescriptor formats def as a pipeline element string.
func AsElementDescriptor(def Definition) string {
	return def.ElementDescriptor()
}

// Catalog is the ordered list of candidate decoders for one codec.
type Catalog struct {
	Codec    Codec
	Decoders []Definition
}

// Len returns the number of candidate decoders.
func (c Catalog) Len() int {
	return len(c.Decoders)
}

func sw(name, description string) Definition {
	return Definition{Name: name, Description: description}
}

func swProps(name, description, props string) Definition {
	return Definition{Name: name, Description: description, Properties: props}
}

func hw(name, description string) Definition {
	return Definition{Name: name, Description: description, Hardware: true}
}

// MJPEGCatalog returns the MJPEG decoders in preference order.
func MJPEGCatalog() Catalog {
	return Catalog{
		Codec: CodecMJPEG,
		Decoders: []Definition{
			swProps("jpegdec", "GStreamer JPEG (Software)", "max-errors=-1"),
			sw("avdec_mjpeg", "FFmpeg MJPEG (Software)"),
			hw("vaapijpegdec", "VA-API JPEG (Intel/AMD HW)"),
			hw("nvjpegdec", "NVIDIA JPEG (NVDEC)"),
			hw("v4l2jpegdec", "V4L2 JPEG (Hardware)"),
		},
	}
}

// H264Catalog returns the H.264 decoders in preference order.
func H264Catalog() Catalog {
	return Catalog{
		Codec: CodecH264,
		Decoders: []Definition{
			hw("vah264dec", "VA-API H.264 (Modern HW)"),
			hw("vaapih264dec", "VA-API H.264 (Legacy HW)"),
			hw("nvh264dec", "NVIDIA H.264 (NVDEC)"),
			hw("d3d11h264dec", "Direct3D 11 H.264 (HW)"),
			hw("v4l2h264dec", "V4L2 H.264 (Hardware)"),
			swProps("avdec_h264", "FFmpeg H.264 (SW, multi-threaded)", "max-threads=0"),
			sw("openh264dec", "OpenH264 (SW, single-threaded)"),
		},
	}
}

// H265Catalog returns the H.265/HEVC decoders in preference order.
func H265Catalog() Catalog {
	return Catalog{
		Codec: CodecH265,
		Decoders: []Definition{
			hw("vah265dec", "VA-API H.265 (Modern HW)"),
			hw("vaapih265dec", "VA-API H.265 (Legacy HW)"),
			hw("nvh265dec", "NVIDIA H.265 (NVDEC)"),
			hw("d3d11h265dec", "Direct3D 11 H.265 (HW)"),
			hw("v4l2h265dec", "V4L2 H.265 (Hardware)"),
			swProps("avdec_h265", "FFmpeg H.265 (SW, multi-threaded)", "max-threads=0"),
		},
	}
}

// Catalogs is the set of catalogs known to the resolver, keyed by codec.
// Build one at startup and hand it to the cache and resolver; it must not
// be mutated afterwards.
type Catalogs struct {
	byCodec map[Codec]Catalog
	order   []Codec
}

// DefaultCatalogs returns the built-in MJPEG, H.264 and H.265 catalogs.
func DefaultCatalogs() *Catalogs {
	return NewCatalogs(MJPEGCatalog(), H264Catalog(), H265Catalog())
}

// NewCatalogs builds a catalog set. A later catalog for the same codec
// replaces an earlier one. Decoder slices are copied.
func NewCatalogs(catalogs ...Catalog) *Catalogs {
	c := &Catalogs{byCodec: make(map[Codec]Catalog, len(catalogs))}
	for _, cat := range catalogs {
		decoders := make([]Definition, len(cat.Decoders))
		copy(decoders, cat.Decoders)
		if _, exists := c.byCodec[cat.Codec]; !exists {
			c.order = append(c.order, cat.Codec)
		}
		c.byCodec[cat.Codec] = Catalog{Codec: cat.Codec, Decoders: decoders}
	}
	return c
}

// Get returns the catalog for a codec.
// The returned Decoders slice is a copy.
func (c *Catalogs) Get(codec Codec) (Catalog, bool) {
	cat, ok := c.byCodec[codec]
	if !ok {
		return Catalog{}, false
	}
	decoders := make([]Definition, len(cat.Decoders))
	copy(decoders, cat.Decoders)
	return Catalog{Codec: cat.Codec, Decoders: decoders}, true
}

// Codecs returns the codecs in registration order.
func (c *Catalogs) Codecs() []Codec {
	out := make([]Codec, len(c.order))
	copy(out, c.order)
	return out
}

// All returns every catalog in registration order.
func (c *Catalogs) All() []Catalog {
	out := make([]Catalog, 0, len(c.order))
	for _, codec := range c.order {
		cat, _ := c.Get(codec)
		out = append(out, cat)
	}
	return out
}

// definitions returns the stored slice without copying. Internal readers only.
func (c *Catalogs) definitions(codec Codec) []Definition {
	return c.byCodec[codec].Decoders
}
