// Package gpu provides the accelerator-backed execution system.
//
// An Accelerator detects the best GPU runtime for the platform (Metal on
// macOS, OpenCL/CUDA/Vulkan elsewhere) and owns device memory for
// device-resident sequences. It implements system.System: replace kernels
// launched on it run on the accelerator's host workers, which keeps results
// identical to the host systems whether or not a GPU is present.
//
// Usage:
//
//	accel, err := gpu.NewAccelerator(&gpu.Config{Enabled: true, FallbackOnError: true})
//	if err != nil {
//		return err
//	}
//	defer accel.Release()
//
//	data := vector.NewDevice(accel, []int32{1, 2, 1, 3, 2})
//	err = replace.Replace(ctx, data, 1, 4) // runs on accel
package gpu

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/orneryd/replacer/pkg/gpu/cuda"
	"github.com/orneryd/replacer/pkg/gpu/metal"
	"github.com/orneryd/replacer/pkg/gpu/opencl"
	"github.com/orneryd/replacer/pkg/gpu/vulkan"
	"github.com/orneryd/replacer/pkg/system"
)

// Accelerator is a GPU-backed execution system with CPU fallback.
type Accelerator struct {
	backend Backend
	config  *Config
	logger  *zap.Logger
	workers *system.Parallel

	// Metal-specific (macOS)
	metalDevice *metal.Device

	// CUDA-specific (NVIDIA)
	cudaDevice *cuda.Device

	// OpenCL-specific (AMD, Intel, cross-platform)
	openclDevice *opencl.Device

	// Vulkan-specific (cross-platform compute)
	vulkanDevice *vulkan.Device

	// Stats
	mu    sync.RWMutex
	stats AcceleratorStats
}

// AcceleratorStats tracks accelerator usage.
type AcceleratorStats struct {
	Launches          int64
	ElementsProcessed int64
	BuffersAllocated  int64
	BytesUploaded     int64
	BytesDownloaded   int64
}

// NewAccelerator creates an accelerator with backend auto-detection.
//
// If config is nil, DefaultConfig is used and no backend is probed.
// If no backend initializes and config.FallbackOnError is true, the
// accelerator runs in CPU mode; otherwise ErrGPUNotAvailable is returned.
func NewAccelerator(config *Config) (*Accelerator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	accel := &Accelerator{
		config:  config,
		backend: BackendNone,
		logger:  logger,
		workers: system.NewParallel(
			system.WithWorkers(config.Workers),
			system.WithGrainSize(config.GrainSize),
			system.WithLogger(logger),
		),
	}

	if !config.Enabled {
		return accel, nil
	}

	if err := accel.initBackend(config.PreferredBackend); err != nil {
		if config.FallbackOnError {
			logger.Info("no GPU backend available, running in CPU mode")
			return accel, nil
		}
		return nil, err
	}

	logger.Info("GPU backend initialized",
		zap.String("backend", accel.backend.String()),
		zap.String("device", accel.DeviceName()),
		zap.Int("memory_mb", accel.DeviceMemoryMB()))
	return accel, nil
}

// initBackend initializes the first backend that comes up.
func (a *Accelerator) initBackend(preferred Backend) error {
	var backends []Backend

	if preferred != BackendNone {
		backends = append(backends, preferred)
	}

	switch runtime.GOOS {
	case "darwin":
		backends = append(backends, BackendMetal)
	case "linux", "windows":
		backends = append(backends, BackendOpenCL, BackendCUDA, BackendVulkan)
	}

	for _, backend := range backends {
		err := a.tryBackend(backend)
		if err == nil {
			return nil
		}
		a.logger.Debug("GPU backend unavailable",
			zap.String("backend", backend.String()),
			zap.Error(err))
	}

	return ErrGPUNotAvailable
}

// tryBackend attempts to initialize a specific backend.
func (a *Accelerator) tryBackend(backend Backend) error {
	switch backend {
	case BackendMetal:
		return a.initMetal()
	case BackendOpenCL:
		return a.initOpenCL()
	case BackendCUDA:
		return a.initCUDA()
	case BackendVulkan:
		return a.initVulkan()
	default:
		return ErrGPUNotAvailable
	}
}

func (a *Accelerator) initMetal() error {
	if metal.DeviceCount() == 0 || !metal.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := metal.NewDevice()
	if err != nil {
		return err
	}
	a.metalDevice = device
	a.backend = BackendMetal
	return nil
}

func (a *Accelerator) initOpenCL() error {
	if opencl.DeviceCount() == 0 || !opencl.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := opencl.NewDevice(0)
	if err != nil {
		return err
	}
	a.openclDevice = device
	a.backend = BackendOpenCL
	return nil
}

func (a *Accelerator) initCUDA() error {
	if cuda.DeviceCount() == 0 || !cuda.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := cuda.NewDevice(0)
	if err != nil {
		return err
	}
	a.cudaDevice = device
	a.backend = BackendCUDA
	return nil
}

func (a *Accelerator) initVulkan() error {
	if vulkan.DeviceCount() == 0 || !vulkan.IsAvailable() {
		return ErrGPUNotAvailable
	}
	device, err := vulkan.NewDevice(0)
	if err != nil {
		return err
	}
	a.vulkanDevice = device
	a.backend = BackendVulkan
	return nil
}

// Release frees all GPU resources. The accelerator keeps working in CPU mode.
func (a *Accelerator) Release() {
	if a.metalDevice != nil {
		a.metalDevice.Release()
		a.metalDevice = nil
	}
	if a.cudaDevice != nil {
		a.cudaDevice.Release()
		a.cudaDevice = nil
	}
	if a.openclDevice != nil {
		a.openclDevice.Release()
		a.openclDevice = nil
	}
	if a.vulkanDevice != nil {
		a.vulkanDevice.Release()
		a.vulkanDevice = nil
	}
	a.backend = BackendNone
}

// IsEnabled returns whether a GPU backend is active.
func (a *Accelerator) IsEnabled() bool {
	return a.backend != BackendNone
}

// Backend returns the active GPU backend.
func (a *Accelerator) Backend() Backend {
	return a.backend
}

// DeviceName returns the GPU device name, or "CPU" in fallback mode.
func (a *Accelerator) DeviceName() string {
	switch a.backend {
	case BackendMetal:
		if a.metalDevice != nil {
			return a.metalDevice.Name()
		}
	case BackendCUDA:
		if a.cudaDevice != nil {
			return a.cudaDevice.Name()
		}
	case BackendOpenCL:
		if a.openclDevice != nil {
			return a.openclDevice.Name()
		}
	case BackendVulkan:
		if a.vulkanDevice != nil {
			return a.vulkanDevice.Name()
		}
	}
	return "CPU"
}

// DeviceMemoryMB returns the GPU memory in megabytes.
func (a *Accelerator) DeviceMemoryMB() int {
	switch a.backend {
	case BackendMetal:
		if a.metalDevice != nil {
			return a.metalDevice.MemoryMB()
		}
	case BackendCUDA:
		if a.cudaDevice != nil {
			return a.cudaDevice.MemoryMB()
		}
	case BackendOpenCL:
		if a.openclDevice != nil {
			return a.openclDevice.MemoryMB()
		}
	case BackendVulkan:
		if a.vulkanDevice != nil {
			return a.vulkanDevice.MemoryMB()
		}
	}
	return 0
}

// Workers returns the concurrency limit of the host workers kernels run on.
func (a *Accelerator) Workers() int {
	return a.workers.Workers()
}

// Stats returns usage statistics.
func (a *Accelerator) Stats() AcceleratorStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Name implements system.System.
func (a *Accelerator) Name() string {
	return "gpu/" + a.backend.String()
}

// Launch implements system.System.
func (a *Accelerator) Launch(ctx context.Context, n int, kernel system.Kernel) error {
	if err := a.workers.Launch(ctx, n, kernel); err != nil {
		return err
	}

	a.mu.Lock()
	a.stats.Launches++
	a.stats.ElementsProcessed += int64(n)
	a.mu.Unlock()
	return nil
}

// RecordUpload accounts for bytes copied from host into accelerator memory.
func (a *Accelerator) RecordUpload(bytes int64) {
	a.mu.Lock()
	a.stats.BytesUploaded += bytes
	a.mu.Unlock()
}

// RecordDownload accounts for bytes copied from accelerator memory to host.
func (a *Accelerator) RecordDownload(bytes int64) {
	a.mu.Lock()
	a.stats.BytesDownloaded += bytes
	a.mu.Unlock()
}
