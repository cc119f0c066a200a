package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/pkg/format"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version   string
	backend   string
	cache     *decoder.AvailabilityCache
	startTime time.Time
}

// NewHealthHandler creates a new health handler. backend names the element
// registry in use.
func NewHealthHandler(version, backend string, cache *decoder.AvailabilityCache) *HealthHandler {
	return &HealthHandler{
		version:   version,
		backend:   backend,
		cache:     cache,
		startTime: time.Now(),
	}
}

// LivezInput is the input for the liveness probe.
type LivezInput struct{}

// LivezResponse is the body of the liveness probe.
type LivezResponse struct {
	Status string `json:"status" example:"ok"`
}

// LivezOutput is the output for the liveness probe.
type LivezOutput struct {
	Body LivezResponse
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// MemoryInfo reports system and process memory in megabytes.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
	// ProcessMemory is the resident set size in human-readable form.
	ProcessMemory string `json:"process_memory"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status" example:"healthy"`
	Timestamp     string  `json:"timestamp"`
	Version       string  `json:"version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Goroutines    int     `json:"goroutines"`
	// Registry is the element registry backend.
	Registry string `json:"registry"`
	// PopulatedCodecs lists codecs whose availability has been computed.
	PopulatedCodecs []string   `json:"populated_codecs"`
	Memory          MemoryInfo `json:"memory"`
}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getLivez",
		Method:      http.MethodGet,
		Path:        "/livez",
		Summary:     "Liveness probe",
		Tags:        []string{"System"},
	}, h.GetLivez)

	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service including memory usage",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetLivez reports that the process is serving.
func (h *HealthHandler) GetLivez(_ context.Context, _ *LivezInput) (*LivezOutput, error) {
	return &LivezOutput{Body: LivezResponse{Status: "ok"}}, nil
}

// GetHealth returns the health status of the service. It never triggers
// decoder availability queries.
func (h *HealthHandler) GetHealth(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	now := time.Now()
	uptime := now.Sub(h.startTime)

	populated := []string{}
	if h.cache != nil {
		for _, c := range h.cache.Catalogs().Codecs() {
			if h.cache.Populated(c) {
				populated = append(populated, c.String())
			}
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:          "healthy",
			Timestamp:       now.UTC().Format(time.RFC3339),
			Version:         h.version,
			Uptime:          format.Uptime(uptime),
			UptimeSeconds:   uptime.Seconds(),
			Goroutines:      runtime.NumGoroutine(),
			Registry:        h.backend,
			PopulatedCodecs: populated,
			Memory:          h.getMemoryInfo(),
		},
	}, nil
}

// getMemoryInfo returns memory usage information. Fields stay zero when
// the platform does not expose them.
func (h *HealthHandler) getMemoryInfo() MemoryInfo {
	info := MemoryInfo{}

	vmStat, err := mem.VirtualMemory()
	if err == nil && vmStat != nil {
		info.TotalMemoryMB = float64(vmStat.Total) / 1024 / 1024
		info.UsedMemoryMB = float64(vmStat.Used) / 1024 / 1024
		info.AvailableMemoryMB = float64(vmStat.Available) / 1024 / 1024
	}

	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return info
	}
	if memInfo, err := proc.MemoryInfo(); err == nil && memInfo != nil {
		info.ProcessMemoryMB = float64(memInfo.RSS) / 1024 / 1024
		info.ProcessMemory = format.Bytes(int64(memInfo.RSS)) //nolint:gosec // RSS fits in int64
	}

	return info
}
