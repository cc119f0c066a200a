package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/internal/insights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `logging:
  level: error
registry:
  backend: static
  static_elements:
    - jpegdec
    - avdec_mjpeg
    - nvh264dec
    - avdec_h264
  deny_elements:
    - nvh264dec
`

// run executes the root command against a static registry config.
func run(t *testing.T, args ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", path}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestResolveCommand(t *testing.T) {
	assert.Equal(t, "jpegdec max-errors=-1\n", run(t, "resolve", "MJPG"))
	// nvh264dec is denied, so the software decoder wins.
	assert.Equal(t, "avdec_h264 max-threads=0\n", run(t, "resolve", "H264"))
	assert.Equal(t, decoder.FallbackElement+"\n", run(t, "resolve", "HEVC"))
	assert.Empty(t, run(t, "resolve", "YUYV"))
}

func TestChainCommand_JSON(t *testing.T) {
	out := run(t, "chain", "MJPEG", "--json", "--pipeline", "v4l2src ! avdec_mjpeg ! appsink")

	var st insights.State
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	require.Len(t, st.DecoderChain, 5)
	assert.Equal(t, decoder.StateAvailable, st.DecoderChain[0].State)
	assert.Equal(t, decoder.StateSelected, st.DecoderChain[1].State)
	assert.Equal(t, decoder.StateUnavailable, st.DecoderChain[2].State)
	assert.Equal(t, "MJPEG", st.FormatChain.NativeFormat)
}

func TestChainCommand_Text(t *testing.T) {
	require.NoError(t, chainCmd.Flags().Set("json", "false"))
	out := run(t, "chain", "MJPG", "--pipeline", "v4l2src ! jpegdec max-errors=-1 ! appsink")

	assert.Contains(t, out, "MJPEG decoders")
	assert.Contains(t, out, "jpegdec [sw] GStreamer JPEG (Software) - Selected")
	assert.Contains(t, out, "avdec_mjpeg [sw] FFmpeg MJPEG (Software) - Available")
	assert.Contains(t, out, "nvjpegdec [hw] NVIDIA JPEG (NVDEC) - Unavailable")
	assert.Contains(t, out, "Format chain")
	assert.Contains(t, out, "  Native format: MJPG")
	assert.NotContains(t, out, "Decoder output")
}

func TestStateIcon(t *testing.T) {
	th := newTheme(&bytes.Buffer{})
	assert.Equal(t, "✓", th.stateIcon(decoder.StateSelected))
	assert.Equal(t, "●", th.stateIcon(decoder.StateAvailable))
	assert.Equal(t, "✗", th.stateIcon(decoder.StateUnavailable))
	assert.Equal(t, "?", th.stateIcon(decoder.StateUnknown))
}

func TestDetectCommand(t *testing.T) {
	out := run(t, "detect")

	var res DetectionResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "static", res.Backend)
	require.Len(t, res.Codecs, 3)

	total := 0
	for _, cat := range decoder.DefaultCatalogs().All() {
		total += cat.Len()
	}
	// Every catalog entry is looked up exactly once.
	assert.Equal(t, int64(total), res.Queries)
	assert.Equal(t, "jpegdec max-errors=-1", res.Codecs[0].Descriptor)
	assert.Equal(t, decoder.KindSoftware, res.Codecs[1].Kind)
	assert.Equal(t, decoder.KindFallback, res.Codecs[2].Kind)
}

func TestCatalogCommand(t *testing.T) {
	require.NoError(t, catalogCmd.Flags().Set("check", "false"))
	out := run(t, "catalog", "h265")
	assert.Contains(t, out, "H.265")
	assert.Contains(t, out, "1. vah265dec [hw] VA-API H.265 (Modern HW)")
	assert.Contains(t, out, "6. avdec_h265 max-threads=0 [sw]")
	assert.NotContains(t, out, "jpegdec")
}

func TestCatalogCommand_Check(t *testing.T) {
	t.Cleanup(func() { _ = catalogCmd.Flags().Set("check", "false") })

	out := run(t, "catalog", "hevc", "--check")
	assert.Contains(t, out, "H.265/HEVC")
	assert.Contains(t, out, "✗  1. vah265dec [hw]")
	assert.Contains(t, out, "0 of 6 decoders installed (0.0%), 6 registry queries")

	out = run(t, "catalog", "--check")
	assert.Contains(t, out, "●  1. jpegdec max-errors=-1 [sw]")
	// nvh264dec is denied.
	assert.Contains(t, out, "✗  3. nvh264dec [hw]")
	assert.Contains(t, out, "3 of 18 decoders installed (16.7%), 18 registry queries")
}

func TestConfigDumpCommand(t *testing.T) {
	out := run(t, "config", "dump")
	assert.Contains(t, out, "backend: static")
	assert.Contains(t, out, "inspect_timeout: 2s")
	assert.True(t, strings.HasPrefix(out, "# decodechain configuration"))
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	assert.Contains(t, out, "decodechain version")
	assert.Contains(t, out, "registry backends:")
	assert.Contains(t, out, "development build")
}
