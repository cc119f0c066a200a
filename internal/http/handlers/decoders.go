// Package handlers provides HTTP API handlers for decodechain.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jmylchreest/decodechain/internal/codec"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/internal/observability"
)

// DecoderHandler serves decoder catalogs, resolutions and fallback chains.
type DecoderHandler struct {
	cache    *decoder.AvailabilityCache
	resolver *decoder.Resolver
	chains   *decoder.ChainBuilder
}

// NewDecoderHandler creates a handler over the shared cache and resolver.
func NewDecoderHandler(cache *decoder.AvailabilityCache, resolver *decoder.Resolver) *DecoderHandler {
	return &DecoderHandler{
		cache:    cache,
		resolver: resolver,
		chains:   decoder.NewChainBuilder(cache),
	}
}

// DecoderResponse describes one catalog entry.
type DecoderResponse struct {
	Name        string `json:"name" doc:"GStreamer element name"`
	Description string `json:"description"`
	Properties  string `json:"properties,omitempty"`
	Hardware    bool   `json:"hardware"`
	Descriptor  string `json:"descriptor" doc:"Element string used in pipelines"`
}

// CatalogResponse is one codec's ordered decoder list.
type CatalogResponse struct {
	Codec       string            `json:"codec"`
	DisplayName string            `json:"display_name"`
	Aliases     []string          `json:"aliases"`
	Decoders    []DecoderResponse `json:"decoders"`
}

// ListCatalogsInput is the input for listing catalogs.
type ListCatalogsInput struct{}

// ListCatalogsOutput is the output for listing catalogs.
type ListCatalogsOutput struct {
	Body []CatalogResponse
}

// FormatInput selects a codec by camera pixel format.
type FormatInput struct {
	Format string `path:"format" doc:"Camera pixel format, e.g. MJPG, H264, HEVC"`
}

// ResolveResponse is the decoder chosen for a pixel format.
type ResolveResponse struct {
	PixelFormat string `json:"pixel_format"`
	Codec       string `json:"codec"`
	Descriptor  string `json:"descriptor"`
	Decoder     string `json:"decoder,omitempty"`
	Hardware    bool   `json:"hardware"`
	Fallback    bool   `json:"fallback"`
	Kind        string `json:"kind" enum:"hardware,software,fallback"`
}

// ResolveOutput is the output for resolving a decoder.
type ResolveOutput struct {
	Body ResolveResponse
}

// ChainInput selects a codec and the running pipeline.
type ChainInput struct {
	Format   string `path:"format" doc:"Camera pixel format, e.g. MJPG, H264, HEVC"`
	Pipeline string `query:"pipeline" doc:"Full pipeline description; empty when no pipeline runs"`
}

// ChainResponse is the fallback chain for a pixel format.
type ChainResponse struct {
	PixelFormat string           `json:"pixel_format"`
	Codec       string           `json:"codec,omitempty"`
	Pipeline    string           `json:"pipeline,omitempty"`
	Chain       []decoder.Status `json:"chain"`
	Active      *decoder.Status  `json:"active,omitempty"`
}

// ChainOutput is the output for the chain endpoint.
type ChainOutput struct {
	Body ChainResponse
}

// AvailabilityInput controls whether uncomputed codecs are queried.
type AvailabilityInput struct {
	PopulatedOnly bool `query:"populated_only" doc:"Only report codecs already computed; never queries the registry"`
}

// DecoderAvailability is one catalog entry with its presence flag.
type DecoderAvailability struct {
	Name      string `json:"name"`
	Hardware  bool   `json:"hardware"`
	Available bool   `json:"available"`
}

// CodecAvailability summarises one codec.
type CodecAvailability struct {
	Codec     string                `json:"codec"`
	Available int                   `json:"available"`
	Total     int                   `json:"total"`
	Decoders  []DecoderAvailability `json:"decoders"`
}

// AvailabilityOutput is the output for the availability endpoint.
type AvailabilityOutput struct {
	Body []CodecAvailability
}

// Register registers the decoder routes with the API.
func (h *DecoderHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listCatalogs",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalogs",
		Summary:     "List decoder catalogs",
		Description: "Returns every codec's decoders in preference order",
		Tags:        []string{"Decoders"},
	}, h.ListCatalogs)

	huma.Register(api, huma.Operation{
		OperationID: "resolveDecoder",
		Method:      http.MethodGet,
		Path:        "/api/v1/decoders/{format}/resolve",
		Summary:     "Resolve decoder",
		Description: "Returns the first installed decoder for a pixel format, or decodebin",
		Tags:        []string{"Decoders"},
	}, h.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "getDecoderChain",
		Method:      http.MethodGet,
		Path:        "/api/v1/decoders/{format}/chain",
		Summary:     "Get fallback chain",
		Description: "Returns the status of every decoder for a pixel format; raw and unknown formats yield an empty chain",
		Tags:        []string{"Decoders"},
	}, h.Chain)

	huma.Register(api, huma.Operation{
		OperationID: "getAvailability",
		Method:      http.MethodGet,
		Path:        "/api/v1/availability",
		Summary:     "Get decoder availability",
		Description: "Returns which decoders are installed, computing each codec on first request",
		Tags:        []string{"Decoders"},
	}, h.Availability)
}

// ListCatalogs returns all catalogs.
func (h *DecoderHandler) ListCatalogs(_ context.Context, _ *ListCatalogsInput) (*ListCatalogsOutput, error) {
	catalogs := h.cache.Catalogs().All()
	out := make([]CatalogResponse, 0, len(catalogs))
	for _, cat := range catalogs {
		decoders := make([]DecoderResponse, 0, len(cat.Decoders))
		for _, def := range cat.Decoders {
			decoders = append(decoders, DecoderResponse{
				Name:        def.Name,
				Description: def.Description,
				Properties:  def.Properties,
				Hardware:    def.Hardware,
				Descriptor:  def.ElementDescriptor(),
			})
		}
		out = append(out, CatalogResponse{
			Codec:       cat.Codec.String(),
			DisplayName: cat.Codec.DisplayName(),
			Aliases:     codec.Aliases(cat.Codec),
			Decoders:    decoders,
		})
	}
	return &ListCatalogsOutput{Body: out}, nil
}

// Resolve returns the decoder chosen for a pixel format.
func (h *DecoderHandler) Resolve(ctx context.Context, input *FormatInput) (*ResolveOutput, error) {
	c, ok := codec.ParsePixelFormat(input.Format)
	if !ok {
		observability.LoggerFromContext(ctx).Debug("no decoder catalog for pixel format",
			slog.String("pixel_format", input.Format),
			slog.Bool("raw", codec.IsRaw(input.Format)),
		)
		return nil, huma.Error404NotFound("No decoder catalog for pixel format " + input.Format)
	}
	res, ok := h.resolver.ResolveCodec(c)
	if !ok {
		return nil, huma.Error404NotFound("No decoder catalog for codec " + c.String())
	}

	body := ResolveResponse{
		PixelFormat: input.Format,
		Codec:       c.String(),
		Descriptor:  res.Descriptor,
		Fallback:    res.Fallback,
		Kind:        res.Kind(),
	}
	if res.Decoder != nil {
		body.Decoder = res.Decoder.Name
		body.Hardware = res.Decoder.Hardware
	}
	return &ResolveOutput{Body: body}, nil
}

// Chain returns the fallback chain for a pixel format.
func (h *DecoderHandler) Chain(_ context.Context, input *ChainInput) (*ChainOutput, error) {
	body := ChainResponse{
		PixelFormat: input.Format,
		Pipeline:    input.Pipeline,
		Chain:       h.chains.BuildChain(input.Format, input.Pipeline),
	}
	if c, ok := codec.ParsePixelFormat(input.Format); ok {
		body.Codec = c.String()
	}
	if active, ok := decoder.Selected(body.Chain); ok {
		body.Active = &active
	}
	return &ChainOutput{Body: body}, nil
}

// Availability returns per-codec decoder presence.
func (h *DecoderHandler) Availability(_ context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
	var snapshot map[decoder.Codec]decoder.Availability
	if input.PopulatedOnly {
		snapshot = h.cache.Snapshot()
	}

	catalogs := h.cache.Catalogs().All()
	out := make([]CodecAvailability, 0, len(catalogs))
	for _, cat := range catalogs {
		var avail decoder.Availability
		if input.PopulatedOnly {
			var ok bool
			if avail, ok = snapshot[cat.Codec]; !ok {
				continue
			}
		} else {
			avail = h.cache.Get(cat.Codec)
		}

		entry := CodecAvailability{
			Codec:     cat.Codec.String(),
			Available: avail.Count(),
			Total:     cat.Len(),
			Decoders:  make([]DecoderAvailability, 0, cat.Len()),
		}
		for i, def := range cat.Decoders {
			entry.Decoders = append(entry.Decoders, DecoderAvailability{
				Name:      def.Name,
				Hardware:  def.Hardware,
				Available: avail.At(i),
			})
		}
		out = append(out, entry)
	}
	return &AvailabilityOutput{Body: out}, nil
}
