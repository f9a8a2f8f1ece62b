package gpu

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Errors
var (
	ErrGPUNotAvailable = errors.New("gpu: no GPU backend available")
	ErrGPUDisabled     = errors.New("gpu: acceleration is disabled")
	ErrInvalidBuffer   = errors.New("gpu: invalid buffer")
	ErrUnknownBackend  = errors.New("gpu: unknown backend")
)

// Backend identifies a GPU runtime.
type Backend int

const (
	BackendNone Backend = iota
	BackendCUDA
	BackendOpenCL
	BackendMetal
	BackendVulkan
)

// String returns the lowercase backend name.
func (b Backend) String() string {
	switch b {
	case BackendNone:
		return "none"
	case BackendCUDA:
		return "cuda"
	case BackendOpenCL:
		return "opencl"
	case BackendMetal:
		return "metal"
	case BackendVulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend converts a name such as "cuda" into a Backend.
// The empty string and "auto" map to BackendNone, meaning auto-detect.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "none":
		return BackendNone, nil
	case "cuda":
		return BackendCUDA, nil
	case "opencl":
		return BackendOpenCL, nil
	case "metal":
		return BackendMetal, nil
	case "vulkan":
		return BackendVulkan, nil
	}
	return BackendNone, fmt.Errorf("%w: %q", ErrUnknownBackend, s)
}

// Config controls accelerator initialization.
type Config struct {
	// Enabled turns on GPU detection. When false the accelerator runs in
	// CPU mode without probing any backend.
	Enabled bool

	// PreferredBackend is tried before the platform defaults.
	PreferredBackend Backend

	// FallbackOnError keeps the accelerator usable in CPU mode when no
	// backend initializes.
	FallbackOnError bool

	// Workers and GrainSize configure the host workers kernels run on.
	Workers   int
	GrainSize int

	Logger *zap.Logger
}

// DefaultConfig returns a disabled configuration with CPU fallback.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         false,
		FallbackOnError: true,
	}
}
