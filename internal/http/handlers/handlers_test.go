package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRegistry struct {
	installed map[string]bool
	calls     atomic.Int64
}

func (r *countingRegistry) HasElement(name string) bool {
	r.calls.Add(1)
	return r.installed[name]
}

func setup(t *testing.T, installed ...string) (humatest.TestAPI, *countingRegistry, *decoder.AvailabilityCache) {
	t.Helper()
	reg := &countingRegistry{installed: map[string]bool{}}
	for _, n := range installed {
		reg.installed[n] = true
	}
	cache := decoder.NewAvailabilityCache(reg, decoder.DefaultCatalogs(), nil)
	resolver := decoder.NewResolver(cache, nil)

	_, api := humatest.New(t)
	NewDecoderHandler(cache, resolver).Register(api)
	NewHealthHandler("1.2.3", "static", cache).Register(api)
	NewInsightsHandler(insights.NewService(decoder.NewChainBuilder(cache), nil)).Register(api)
	return api, reg, cache
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestListCatalogs(t *testing.T) {
	api, reg, _ := setup(t)

	resp := api.Get("/api/v1/catalogs")
	require.Equal(t, http.StatusOK, resp.Code)

	got := decode[[]CatalogResponse](t, resp.Body.Bytes())
	require.Len(t, got, 3)
	assert.Equal(t, "mjpeg", got[0].Codec)
	assert.Equal(t, "jpegdec", got[0].Decoders[0].Name)
	assert.Equal(t, "jpegdec max-errors=-1", got[0].Decoders[0].Descriptor)
	assert.Equal(t, "h264", got[1].Codec)
	assert.Equal(t, "h265", got[2].Codec)
	assert.Equal(t, int64(0), reg.calls.Load(), "listing catalogs must not query the registry")
}

func TestResolve(t *testing.T) {
	api, _, _ := setup(t, "nvh264dec", "avdec_h264")

	resp := api.Get("/api/v1/decoders/H264/resolve")
	require.Equal(t, http.StatusOK, resp.Code)

	got := decode[ResolveResponse](t, resp.Body.Bytes())
	assert.Equal(t, "nvh264dec", got.Descriptor)
	assert.True(t, got.Hardware)
	assert.False(t, got.Fallback)
	assert.Equal(t, decoder.KindHardware, got.Kind)
}

func TestResolve_Fallback(t *testing.T) {
	api, _, _ := setup(t)

	got := decode[ResolveResponse](t, api.Get("/api/v1/decoders/HEVC/resolve").Body.Bytes())
	assert.Equal(t, "h265", got.Codec)
	assert.Equal(t, decoder.FallbackElement, got.Descriptor)
	assert.True(t, got.Fallback)
	assert.Equal(t, decoder.KindFallback, got.Kind)
}

func TestResolve_RawFormat(t *testing.T) {
	api, _, _ := setup(t, "jpegdec")

	assert.Equal(t, http.StatusNotFound, api.Get("/api/v1/decoders/YUYV/resolve").Code)
}

func TestChain(t *testing.T) {
	api, _, _ := setup(t, "jpegdec", "avdec_mjpeg")

	pipeline := "pipewiresrc ! avdec_mjpeg ! videoconvert ! appsink"
	resp := api.Get("/api/v1/decoders/MJPG/chain?pipeline=" + url.QueryEscape(pipeline))
	require.Equal(t, http.StatusOK, resp.Code)

	got := decode[ChainResponse](t, resp.Body.Bytes())
	require.Len(t, got.Chain, 5)
	assert.Equal(t, decoder.StateAvailable, got.Chain[0].State)
	assert.Equal(t, decoder.StateSelected, got.Chain[1].State)
	assert.Equal(t, decoder.StateUnavailable, got.Chain[2].State)
	require.NotNil(t, got.Active)
	assert.Equal(t, "avdec_mjpeg", got.Active.Name)
}

func TestChain_RawFormat(t *testing.T) {
	api, reg, _ := setup(t, "jpegdec")

	got := decode[ChainResponse](t, api.Get("/api/v1/decoders/NV12/chain").Body.Bytes())
	assert.NotNil(t, got.Chain)
	assert.Empty(t, got.Chain)
	assert.Nil(t, got.Active)
	assert.Empty(t, got.Codec)
	assert.Equal(t, int64(0), reg.calls.Load())
}

func TestAvailability(t *testing.T) {
	api, reg, cache := setup(t, "jpegdec", "avdec_h265")

	got := decode[[]CodecAvailability](t, api.Get("/api/v1/availability?populated_only=true").Body.Bytes())
	assert.Empty(t, got)
	assert.Equal(t, int64(0), reg.calls.Load())

	got = decode[[]CodecAvailability](t, api.Get("/api/v1/availability").Body.Bytes())
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Available)
	assert.Equal(t, 5, got[0].Total)
	assert.True(t, got[0].Decoders[0].Available)
	assert.Equal(t, 0, got[1].Available)
	assert.Equal(t, 1, got[2].Available)

	total := int64(0)
	for _, cat := range cache.Catalogs().All() {
		total += int64(cat.Len())
	}
	assert.Equal(t, total, reg.calls.Load())

	api.Get("/api/v1/availability")
	assert.Equal(t, total, reg.calls.Load(), "availability is computed once per codec")
}

func TestLivez(t *testing.T) {
	api, _, _ := setup(t)

	resp := api.Get("/livez")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decode[map[string]any](t, resp.Body.Bytes())
	assert.Equal(t, "ok", got["status"])
}

func TestHealth(t *testing.T) {
	api, reg, cache := setup(t, "jpegdec")
	cache.Get(decoder.CodecMJPEG)
	before := reg.calls.Load()

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	got := decode[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "static", got.Registry)
	assert.Equal(t, []string{"mjpeg"}, got.PopulatedCodecs)
	assert.NotEmpty(t, got.Uptime)
	if got.Memory.ProcessMemoryMB > 0 {
		assert.NotEmpty(t, got.Memory.ProcessMemory)
	}
	assert.Equal(t, before, reg.calls.Load())
}

func TestInsights_NoPipeline(t *testing.T) {
	api, reg, _ := setup(t, "jpegdec")

	resp := api.Get("/api/v1/insights")
	require.Equal(t, http.StatusOK, resp.Code)

	got := decode[InsightsResponse](t, resp.Body.Bytes())
	assert.Equal(t, insights.NoPipeline, got.PipelineText)
	assert.Empty(t, got.ChainRows)
	assert.Equal(t, int64(0), reg.calls.Load())
}

func TestInsights_Report(t *testing.T) {
	api, _, _ := setup(t, "jpegdec", "avdec_mjpeg")

	resp := api.Put("/api/v1/insights", map[string]any{
		"pixel_format": "MJPG",
		"pipeline":     "pipewiresrc ! avdec_mjpeg ! videoconvert ! appsink",
		"format_chain": map[string]any{
			"source":         "V4L2 via PipeWire",
			"resolution":     "1920x1080",
			"framerate":      "30/1",
			"native_format":  "ignored",
			"decoded_format": "I420",
			"gpu_processing": "I420 to RGBA",
		},
		"performance": map[string]any{
			"frame_latency":       int64(16667 * time.Microsecond),
			"dropped_frames":      2,
			"decoded_frame_size":  3110400,
			"decode_time":         int64(4 * time.Millisecond),
			"gpu_upload_time":     int64(1500 * time.Microsecond),
			"copy_time":           int64(5 * time.Microsecond),
			"copy_bandwidth_mbps": 0,
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	got := decode[InsightsResponse](t, resp.Body.Bytes())
	assert.Equal(t, "pipewiresrc ! avdec_mjpeg ! videoconvert ! appsink", got.PipelineText)
	require.Len(t, got.ChainRows, 5)
	assert.Equal(t, insights.Row{Label: "jpegdec", Value: "GStreamer JPEG (Software) - Available"}, got.ChainRows[0])
	assert.Equal(t, insights.Row{Label: "avdec_mjpeg", Value: "FFmpeg MJPEG (Software) - Selected"}, got.ChainRows[1])

	assert.Contains(t, got.FormatRows, insights.Row{Label: "Native format", Value: "MJPG"})
	assert.Contains(t, got.FormatRows, insights.Row{Label: "Decoder output", Value: "I420"})

	assert.Contains(t, got.Performance, insights.Row{Label: "Frame latency", Value: "16.67 ms"})
	assert.Contains(t, got.Performance, insights.Row{Label: "Decoded frame size", Value: "2.97 MB"})
	assert.Contains(t, got.Performance, insights.Row{Label: "Copy time", Value: "< 0.01 ms (zero-copy)"})
	assert.Contains(t, got.Performance, insights.Row{Label: "GPU upload bandwidth", Value: "N/A"})

	// The report is kept for readers.
	again := decode[InsightsResponse](t, api.Get("/api/v1/insights").Body.Bytes())
	assert.Equal(t, got.ChainRows, again.ChainRows)

	// A stopped pipeline clears the selection but keeps availability.
	stopped := decode[InsightsResponse](t, api.Put("/api/v1/insights", map[string]any{
		"pixel_format": "MJPG",
	}).Body.Bytes())
	assert.Equal(t, insights.NoPipeline, stopped.PipelineText)
	assert.Equal(t, "FFmpeg MJPEG (Software) - Available", stopped.ChainRows[1].Value)
}
