// Package registry provides element registries that answer whether a
// GStreamer element is installed. Every backend treats a failed lookup as
// "not installed".
package registry

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/decodechain/internal/config"
	"github.com/jmylchreest/decodechain/internal/decoder"
)

// ErrUnsupportedBackend is returned when a backend is not usable in this build
// or on this host.
var ErrUnsupportedBackend = errors.New("registry backend not supported")

// New builds the registry described by cfg and returns it with the name of
// the backend actually used. For "auto" the order is gstreamer (when built
// with the gstreamer tag), then gst-inspect when found, then static.
func New(cfg config.RegistryConfig, logger *slog.Logger) (decoder.Registry, string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reg, backend, err := newBackend(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	if len(cfg.DenyElements) > 0 {
		logger.Info("hiding denied decoder elements",
			slog.Any("elements", cfg.DenyElements),
		)
		reg = Deny(reg, cfg.DenyElements...)
	}

	logger.Debug("element registry ready", slog.String("backend", backend))
	return reg, backend, nil
}

func newBackend(cfg config.RegistryConfig, logger *slog.Logger) (decoder.Registry, string, error) {
	switch cfg.Backend {
	case config.BackendStatic:
		reg := NewStatic(cfg.StaticElements...)
		logger.Debug("using static element list", slog.Any("elements", reg.Elements()))
		return reg, config.BackendStatic, nil

	case config.BackendGStreamer:
		reg, err := NewGStreamer()
		if err != nil {
			return nil, "", fmt.Errorf("creating gstreamer registry: %w", err)
		}
		return reg, config.BackendGStreamer, nil

	case config.BackendInspect:
		reg, err := NewInspect(cfg.InspectBinary(), cfg.InspectTimeout, logger)
		if err != nil {
			return nil, "", fmt.Errorf("creating gst-inspect registry: %w", err)
		}
		return reg, config.BackendInspect, nil

	case config.BackendAuto, "":
		if reg, err := NewGStreamer(); err == nil {
			return reg, config.BackendGStreamer, nil
		}
		if reg, err := NewInspect(cfg.InspectBinary(), cfg.InspectTimeout, logger); err == nil {
			return reg, config.BackendInspect, nil
		}
		logger.Warn("no gstreamer registry available, using static element list",
			slog.Int("elements", len(cfg.StaticElements)),
		)
		return NewStatic(cfg.StaticElements...), config.BackendStatic, nil

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedBackend, cfg.Backend)
	}
}
