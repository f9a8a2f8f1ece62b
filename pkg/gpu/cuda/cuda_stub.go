// Package cuda binds the CUDA runtime for device-resident sequences.
// This build carries no native CUDA bindings: IsAvailable reports false and
// every constructor returns ErrCUDANotAvailable.
package cuda

import (
	"errors"
)

// Errors
var (
	ErrCUDANotAvailable = errors.New("cuda: CUDA is not available in this build")
	ErrDeviceCreation   = errors.New("cuda: failed to create CUDA device")
	ErrBufferCreation   = errors.New("cuda: failed to create buffer")
	ErrInvalidBuffer    = errors.New("cuda: invalid buffer")
)

// MemoryType defines how buffer memory is managed.
type MemoryType int

const (
	MemoryDevice MemoryType = 0
	MemoryPinned MemoryType = 1
)

// Device represents a CUDA GPU device (stub).
type Device struct{}

// Buffer represents a CUDA memory buffer (stub).
type Buffer struct{}

// IsAvailable returns false.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0.
func DeviceCount() int {
	return 0
}

// NewDevice returns ErrCUDANotAvailable.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrCUDANotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// Name returns empty string.
func (d *Device) Name() string { return "" }

// MemoryMB returns 0.
func (d *Device) MemoryMB() int { return 0 }

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []byte, memType MemoryType) (*Buffer, error) {
	return nil, ErrCUDANotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Write returns an error.
func (b *Buffer) Write(data []byte) error { return ErrCUDANotAvailable }

// Read returns an error.
func (b *Buffer) Read(dst []byte) error { return ErrCUDANotAvailable }
