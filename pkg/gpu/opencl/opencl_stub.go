// Package opencl binds the OpenCL runtime for device-resident sequences.
// This build carries no native OpenCL bindings: IsAvailable reports false and
// every constructor returns ErrOpenCLNotAvailable.
package opencl

import (
	"errors"
)

// Errors
var (
	ErrOpenCLNotAvailable = errors.New("opencl: OpenCL is not available in this build")
	ErrDeviceCreation     = errors.New("opencl: failed to create OpenCL device")
	ErrBufferCreation     = errors.New("opencl: failed to create buffer")
	ErrInvalidBuffer      = errors.New("opencl: invalid buffer")
)

// Device represents a OpenCL GPU device (stub).
type Device struct{}

// Buffer represents a OpenCL memory buffer (stub).
type Buffer struct{}

// IsAvailable returns false.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0.
func DeviceCount() int {
	return 0
}

// NewDevice returns ErrOpenCLNotAvailable.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrOpenCLNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// Name returns empty string.
func (d *Device) Name() string { return "" }

// MemoryMB returns 0.
func (d *Device) MemoryMB() int { return 0 }

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []byte) (*Buffer, error) {
	return nil, ErrOpenCLNotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Write returns an error.
func (b *Buffer) Write(data []byte) error { return ErrOpenCLNotAvailable }

// Read returns an error.
func (b *Buffer) Read(dst []byte) error { return ErrOpenCLNotAvailable }
