package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jmylchreest/decodechain/internal/observability"
)

// InspectPathEnv overrides the gst-inspect binary location.
const InspectPathEnv = "DECODECHAIN_GST_INSPECT_PATH"

// Inspect checks elements by running "gst-inspect-1.0 --exists <name>".
// Exit status 0 means installed; any other outcome, including a timeout,
// means absent.
type Inspect struct {
	path    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewInspect locates the gst-inspect binary and returns a registry using it.
// binary may be a bare name (searched on PATH) or a path.
func NewInspect(binary string, timeout time.Duration, logger *slog.Logger) (*Inspect, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := findBinary(binary, InspectPathEnv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBackend, err)
	}
	return &Inspect{path: path, timeout: timeout, logger: logger}, nil
}

// Path returns the resolved gst-inspect binary.
func (r *Inspect) Path() string {
	return r.path
}

// HasElement runs gst-inspect for name.
func (r *Inspect) HasElement(name string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.path, "--exists", name)
	err := cmd.Run()
	if err == nil {
		return true
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || ctx.Err() != nil {
		// Not a plain "element missing" answer; still reported as absent.
		observability.WithError(r.logger, err).Debug("gst-inspect lookup failed",
			slog.String("element", name),
		)
	}
	return false
}

// findBinary resolves an executable.
// Search order:
//  1. name itself when it contains a path separator
//  2. the environment variable, when set
//  3. name on PATH
func findBinary(name, envVar string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("binary %s is not executable", name)
	}

	if envVar != "" {
		if envPath := os.Getenv(envVar); envPath != "" && isExecutable(envPath) {
			return envPath, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("binary %s not found", name)
}

// isExecutable checks that path is a regular file with an executable bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
