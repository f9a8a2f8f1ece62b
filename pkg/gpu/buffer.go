package gpu

import (
	"github.com/orneryd/replacer/pkg/gpu/cuda"
	"github.com/orneryd/replacer/pkg/gpu/metal"
	"github.com/orneryd/replacer/pkg/gpu/opencl"
	"github.com/orneryd/replacer/pkg/gpu/vulkan"
)

// Buffer is a block of device memory on the accelerator's active backend.
type Buffer struct {
	backend Backend
	size    uint64

	metalBuffer  *metal.Buffer
	cudaBuffer   *cuda.Buffer
	openclBuffer *opencl.Buffer
	vulkanBuffer *vulkan.Buffer
}

// NewBuffer uploads data into a new device buffer.
// It returns ErrGPUDisabled when no backend is active.
func (a *Accelerator) NewBuffer(data []byte) (*Buffer, error) {
	if !a.IsEnabled() {
		return nil, ErrGPUDisabled
	}

	buf := &Buffer{backend: a.backend, size: uint64(len(data))}
	var err error
	switch a.backend {
	case BackendMetal:
		buf.metalBuffer, err = a.metalDevice.NewBuffer(data, metal.StorageShared)
	case BackendCUDA:
		buf.cudaBuffer, err = a.cudaDevice.NewBuffer(data, cuda.MemoryDevice)
	case BackendOpenCL:
		buf.openclBuffer, err = a.openclDevice.NewBuffer(data)
	case BackendVulkan:
		buf.vulkanBuffer, err = a.vulkanDevice.NewBuffer(data)
	default:
		return nil, ErrGPUNotAvailable
	}
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.stats.BuffersAllocated++
	a.stats.BytesUploaded += int64(len(data))
	a.mu.Unlock()
	return buf, nil
}

// Size returns the buffer length in bytes.
func (b *Buffer) Size() uint64 {
	if b == nil {
		return 0
	}
	return b.size
}

// Write overwrites the buffer contents from data.
func (b *Buffer) Write(data []byte) error {
	if b == nil || uint64(len(data)) > b.size {
		return ErrInvalidBuffer
	}
	switch b.backend {
	case BackendMetal:
		return b.metalBuffer.Write(data)
	case BackendCUDA:
		return b.cudaBuffer.Write(data)
	case BackendOpenCL:
		return b.openclBuffer.Write(data)
	case BackendVulkan:
		return b.vulkanBuffer.Write(data)
	}
	return ErrInvalidBuffer
}

// Read copies the buffer contents into dst.
func (b *Buffer) Read(dst []byte) error {
	if b == nil || uint64(len(dst)) > b.size {
		return ErrInvalidBuffer
	}
	switch b.backend {
	case BackendMetal:
		return b.metalBuffer.Read(dst)
	case BackendCUDA:
		return b.cudaBuffer.Read(dst)
	case BackendOpenCL:
		return b.openclBuffer.Read(dst)
	case BackendVulkan:
		return b.vulkanBuffer.Read(dst)
	}
	return ErrInvalidBuffer
}

// Release frees the device memory. It is safe to call more than once.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	if b.metalBuffer != nil {
		b.metalBuffer.Release()
		b.metalBuffer = nil
	}
	if b.cudaBuffer != nil {
		b.cudaBuffer.Release()
		b.cudaBuffer = nil
	}
	if b.openclBuffer != nil {
		b.openclBuffer.Release()
		b.openclBuffer = nil
	}
	if b.vulkanBuffer != nil {
		b.vulkanBuffer.Release()
		b.vulkanBuffer = nil
	}
	b.backend = BackendNone
}
