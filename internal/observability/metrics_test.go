package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestAvailabilityCollector_OnlyPopulatedCodecs(t *testing.T) {
	var calls atomic.Int64
	reg := decoder.RegistryFunc(func(name string) bool {
		calls.Add(1)
		return name == "jpegdec"
	})
	cache := decoder.NewAvailabilityCache(reg, decoder.DefaultCatalogs(), nil)

	m, err := NewMetrics(cache)
	require.NoError(t, err)

	body := scrape(t, m)
	assert.NotContains(t, body, "decodechain_decoder_available{")
	assert.Equal(t, int64(0), calls.Load(), "scraping must not query the registry")

	cache.Get(decoder.CodecMJPEG)
	body = scrape(t, m)
	assert.Contains(t, body, `decodechain_decoder_available{codec="mjpeg",decoder="jpegdec",kind="software"} 1`)
	assert.Contains(t, body, `decodechain_decoder_available{codec="mjpeg",decoder="nvjpegdec",kind="hardware"} 0`)
	assert.NotContains(t, body, `codec="h264"`)
	assert.Equal(t, int64(decoder.MJPEGCatalog().Len()), calls.Load())
}

func TestMetrics_ObserveResolution(t *testing.T) {
	cache := decoder.NewAvailabilityCache(decoder.RegistryFunc(func(string) bool { return false }), nil, nil)
	m, err := NewMetrics(cache)
	require.NoError(t, err)

	resolver := decoder.NewResolver(cache, nil, decoder.WithObserver(m))
	assert.Equal(t, decoder.FallbackElement, resolver.FindAvailable(decoder.H265Catalog()))
	resolver.FindAvailable(decoder.H265Catalog())

	body := scrape(t, m)
	assert.Contains(t, body, `decodechain_resolutions_total{codec="h265",kind="fallback"} 2`)
}

func TestNewMetrics_NilCache(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.ObserveResolution(decoder.CodecH264, decoder.KindSoftware)

	assert.Contains(t, scrape(t, m), `decodechain_resolutions_total{codec="h264",kind="software"} 1`)
}
