package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/decodechain/internal/insights"
	"github.com/jmylchreest/decodechain/internal/observability"
)

// InsightsHandler accepts pipeline reports from the pipeline owner and
// serves the resulting insights view.
type InsightsHandler struct {
	service *insights.Service
}

// NewInsightsHandler creates a handler over the shared insights service.
func NewInsightsHandler(service *insights.Service) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// InsightsReport is what the pipeline owner reports after (re)building a
// pipeline or sampling frame timings.
type InsightsReport struct {
	PixelFormat string `json:"pixel_format" doc:"Camera pixel format, e.g. MJPG, YUYV"`
	Pipeline    string `json:"pipeline,omitempty" doc:"Full pipeline description; empty when the pipeline stopped"`
	// FormatChain replaces the current format chain when set. Its native
	// format is always taken from PixelFormat.
	FormatChain *insights.FormatChain `json:"format_chain,omitempty"`
	Performance *insights.Performance `json:"performance,omitempty" doc:"Durations are in nanoseconds"`
}

// ReportInsightsInput is the input for reporting pipeline state.
type ReportInsightsInput struct {
	Body InsightsReport
}

// GetInsightsInput is the input for reading the insights view.
type GetInsightsInput struct{}

// InsightsResponse is the current insights with display rows.
type InsightsResponse struct {
	State        insights.State `json:"state"`
	PipelineText string         `json:"pipeline_text"`
	ChainRows    []insights.Row `json:"chain_rows"`
	FormatRows   []insights.Row `json:"format_rows"`
	Performance  []insights.Row `json:"performance_rows"`
}

// InsightsOutput is the output for both insights operations.
type InsightsOutput struct {
	Body InsightsResponse
}

// Register registers the insights routes with the API.
func (h *InsightsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reportInsights",
		Method:      http.MethodPut,
		Path:        "/api/v1/insights",
		Summary:     "Report pipeline state",
		Description: "Records the running pipeline and rebuilds its decoder chain",
		Tags:        []string{"Insights"},
	}, h.Report)

	huma.Register(api, huma.Operation{
		OperationID: "getInsights",
		Method:      http.MethodGet,
		Path:        "/api/v1/insights",
		Summary:     "Get insights",
		Description: "Returns the decoder chain, format chain and frame timings of the reported pipeline",
		Tags:        []string{"Insights"},
	}, h.Get)
}

// Report records a pipeline report.
func (h *InsightsHandler) Report(ctx context.Context, input *ReportInsightsInput) (*InsightsOutput, error) {
	report := input.Body
	if report.FormatChain != nil {
		h.service.SetFormatChain(*report.FormatChain)
	}
	if report.Performance != nil {
		h.service.RecordPerformance(*report.Performance)
	}
	chain := h.service.Refresh(report.PixelFormat, report.Pipeline)

	observability.LoggerFromContext(ctx).Debug("pipeline reported",
		slog.String("pixel_format", report.PixelFormat),
		slog.Int("chain_length", len(chain)),
		slog.Bool("running", report.Pipeline != ""),
	)
	return h.output(), nil
}

// Get returns the current insights.
func (h *InsightsHandler) Get(_ context.Context, _ *GetInsightsInput) (*InsightsOutput, error) {
	return h.output(), nil
}

func (h *InsightsHandler) output() *InsightsOutput {
	st := h.service.Snapshot()
	return &InsightsOutput{
		Body: InsightsResponse{
			State:        st,
			PipelineText: st.PipelineText(),
			ChainRows:    st.ChainRows(),
			FormatRows:   st.FormatChain.Rows(),
			Performance:  st.PerformanceRows(),
		},
	}
}
