package insights

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/jmylchreest/decodechain/internal/decoder"
)

// Service tracks the insights of the current pipeline. It is safe for
// concurrent use: the pipeline owner writes, diagnostics readers snapshot.
type Service struct {
	chains *decoder.ChainBuilder
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewService creates a service deriving decoder chains from chains.
func NewService(chains *decoder.ChainBuilder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{chains: chains, logger: logger, state: State{DecoderChain: []decoder.Status{}}}
}

// Refresh records a new pipeline and rebuilds the decoder chain for
// pixelFormat. An empty pipeline means the pipeline stopped.
func (s *Service) Refresh(pixelFormat, pipeline string) []decoder.Status {
	chain := s.chains.BuildChain(pixelFormat, pipeline)

	s.mu.Lock()
	s.state.Pipeline = pipeline
	s.state.DecoderChain = chain
	s.state.FormatChain.NativeFormat = pixelFormat
	s.mu.Unlock()

	if active, ok := ActiveDecoder(chain); ok {
		s.logger.Debug("insights refreshed",
			slog.String("pixel_format", pixelFormat),
			slog.String("active_decoder", active.Name),
		)
	} else {
		s.logger.Debug("insights refreshed",
			slog.String("pixel_format", pixelFormat),
			slog.Int("chain_length", len(chain)),
		)
	}
	return chain
}

// SetFormatChain replaces the format chain.
func (s *Service) SetFormatChain(f FormatChain) {
	s.mu.Lock()
	s.state.FormatChain = f
	s.mu.Unlock()
}

// RecordPerformance replaces the frame timings.
func (s *Service) RecordPerformance(p Performance) {
	s.mu.Lock()
	s.state.Performance = p
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.DecoderChain = slices.Clone(s.state.DecoderChain)
	return st
}

// ActiveDecoder returns the selected entry of chain, if any.
func ActiveDecoder(chain []decoder.Status) (decoder.Status, bool) {
	return decoder.Selected(chain)
}
