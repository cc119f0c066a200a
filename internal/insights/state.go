// Package insights holds the diagnostic view of a running camera pipeline:
// the decoder fallback chain, the format chain and per-frame timings.
package insights

import (
	"strconv"
	"time"

	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/pkg/format"
)

// NoPipeline is shown in place of the pipeline string when none is running.
const NoPipeline = "No pipeline active"

// Row is one label/value pair ready for display.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormatChain describes how frames travel from the camera to the screen.
type FormatChain struct {
	// Source is the capture path, e.g. "V4L2 via PipeWire".
	Source     string `json:"source"`
	Resolution string `json:"resolution"`
	Framerate  string `json:"framerate"`
	// NativeFormat is what the camera sends, e.g. "MJPG" or "YUYV".
	NativeFormat string `json:"native_format"`
	// DecodedFormat is the decoder output, empty when no decoding happens.
	DecodedFormat string `json:"decoded_format,omitempty"`
	// GPUProcessing describes the shader stage, e.g. "I420 → RGBA".
	GPUProcessing string `json:"gpu_processing"`
}

// Rows returns the chain as display rows. The decoded format row is only
// present when a decoder is involved.
func (f FormatChain) Rows() []Row {
	rows := []Row{
		{Label: "Source", Value: f.Source},
		{Label: "Resolution", Value: f.Resolution},
		{Label: "Framerate", Value: f.Framerate},
		{Label: "Native format", Value: f.NativeFormat},
	}
	if f.DecodedFormat != "" {
		rows = append(rows, Row{Label: "Decoder output", Value: f.DecodedFormat})
	}
	return append(rows, Row{Label: "GPU processing", Value: f.GPUProcessing})
}

// Performance holds the most recent frame timings.
type Performance struct {
	FrameLatency  time.Duration `json:"frame_latency"`
	DroppedFrames uint64        `json:"dropped_frames"`
	// DecodedFrameSize is the frame size after decoding, in bytes.
	DecodedFrameSize uint64        `json:"decoded_frame_size"`
	DecodeTime       time.Duration `json:"decode_time"`
	GPUUploadTime    time.Duration `json:"gpu_upload_time"`
	CopyTime         time.Duration `json:"copy_time"`
	// CopyBandwidthMBps is zero when unknown.
	CopyBandwidthMBps float64 `json:"copy_bandwidth_mbps"`
}

func micros(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	return uint64(d.Microseconds())
}

// Rows returns the timings formatted for display.
func (p Performance) Rows() []Row {
	return []Row{
		{Label: "Frame latency", Value: format.Millis(micros(p.FrameLatency))},
		{Label: "Dropped frames", Value: strconv.FormatUint(p.DroppedFrames, 10)},
		{Label: "Decoded frame size", Value: format.Megabytes(p.DecodedFrameSize)},
		{Label: "Decode time", Value: format.Millis(micros(p.DecodeTime))},
		{Label: "Copy time", Value: format.CopyTime(micros(p.CopyTime))},
		{Label: "GPU upload time", Value: format.Millis(micros(p.GPUUploadTime))},
		{Label: "GPU upload bandwidth", Value: format.Bandwidth(p.CopyBandwidthMBps)},
	}
}

// State is a point-in-time copy of the insights for one pipeline.
type State struct {
	// Pipeline is the full pipeline description, empty when none is running.
	Pipeline     string           `json:"pipeline,omitempty"`
	DecoderChain []decoder.Status `json:"decoder_chain"`
	FormatChain  FormatChain      `json:"format_chain"`
	Performance  Performance      `json:"performance"`
}

// PipelineText returns the pipeline string or NoPipeline.
func (s State) PipelineText() string {
	if s.Pipeline == "" {
		return NoPipeline
	}
	return s.Pipeline
}

// PerformanceRows returns the performance section rows.
func (s State) PerformanceRows() []Row {
	return s.Performance.Rows()
}

// ChainRows returns one row per decoder: the element name and
// "<description> - <status>".
func (s State) ChainRows() []Row {
	rows := make([]Row, 0, len(s.DecoderChain))
	for _, st := range s.DecoderChain {
		rows = append(rows, Row{Label: st.Name, Value: st.Description + " - " + StatusLabel(st.State)})
	}
	return rows
}

// StatusLabel maps a fallback state to its display label.
func StatusLabel(state decoder.FallbackState) string {
	switch state {
	case decoder.StateSelected:
		return "Selected"
	case decoder.StateAvailable:
		return "Available"
	case decoder.StateUnavailable:
		return "Unavailable"
	default:
		return "Unknown"
	}
}
