// Package codec maps camera pixel formats to the compressed video codecs
// that need a decoding element before frames can be used.
// Raw formats are known here too so callers can tell "no decoder needed"
// apart from "unknown format".
package codec

import "strings"

// Video represents a compressed video codec family.
type Video string

// Video codec constants.
const (
	VideoMJPEG Video = "mjpeg" // Motion JPEG
	VideoH264  Video = "h264"  // H.264/AVC
	VideoH265  Video = "h265"  // H.265/HEVC
)

// String returns the string representation of the video codec.
func (v Video) String() string {
	return string(v)
}

// DisplayName returns the human-readable codec name.
func (v Video) DisplayName() string {
	if info, ok := videoRegistry[v]; ok {
		return info.DisplayName
	}
	return string(v)
}

// videoInfo contains metadata about a compressed codec.
type videoInfo struct {
	Name        Video
	DisplayName string
	// Pixel format strings (as reported by the camera backend) for this codec.
	// Matching is case-sensitive.
	Aliases []string
}

// videoRegistry contains all compressed codec definitions.
var videoRegistry = map[Video]*videoInfo{
	VideoMJPEG: {
		Name:        VideoMJPEG,
		DisplayName: "MJPEG",
		Aliases:     []string{"MJPG", "MJPEG"},
	},
	VideoH264: {
		Name:        VideoH264,
		DisplayName: "H.264",
		Aliases:     []string{"H264"},
	},
	VideoH265: {
		Name:        VideoH265,
		DisplayName: "H.265/HEVC",
		Aliases:     []string{"H265", "HEVC"},
	},
}

// rawFormats are uncompressed pixel formats commonly reported by cameras.
// They never need a decoder.
var rawFormats = map[string]struct{}{
	"YUYV": {}, "YUY2": {}, "UYVY": {}, "NV12": {}, "NV21": {},
	"I420": {}, "YV12": {}, "RGB3": {}, "BGR3": {}, "RGBx": {},
	"BGRx": {}, "RGBA": {}, "BGRA": {}, "GREY": {}, "GRAY8": {},
}

// videoAliasIndex maps all aliases to their canonical codec.
var videoAliasIndex map[string]Video

func init() {
	videoAliasIndex = make(map[string]Video)
	for codec, info := range videoRegistry {
		for _, alias := range info.Aliases {
			videoAliasIndex[alias] = codec
		}
	}
}

// ParsePixelFormat maps a camera pixel format to its compressed codec.
// Matching is exact and case-sensitive: "MJPG" is recognized, "mjpg" is not.
// Returns false for raw formats and anything unrecognized.
func ParsePixelFormat(format string) (Video, bool) {
	codec, ok := videoAliasIndex[format]
	return codec, ok
}

// IsRaw reports whether the pixel format is a known uncompressed format.
func IsRaw(format string) bool {
	_, ok := rawFormats[format]
	return ok
}

// Aliases returns the pixel format strings that map to the codec.
func Aliases(v Video) []string {
	info, ok := videoRegistry[v]
	if !ok {
		return nil
	}
	out := make([]string, len(info.Aliases))
	copy(out, info.Aliases)
	return out
}

// All returns every supported compressed codec in a stable order.
func All() []Video {
	return []Video{VideoMJPEG, VideoH264, VideoH265}
}

// ParseVideo parses a canonical codec name ("mjpeg", "h264", "h265") or a
// pixel format alias, ignoring case. Used by CLI inputs that accept either;
// camera-reported formats go through ParsePixelFormat instead.
func ParseVideo(s string) (Video, bool) {
	if v := Video(strings.ToLower(s)); videoRegistry[v] != nil {
		return v, true
	}
	return ParsePixelFormat(strings.ToUpper(s))
}
