// Package metal binds the Metal runtime for device-resident sequences.
// This build carries no native Metal bindings: IsAvailable reports false and
// every constructor returns ErrMetalNotAvailable.
package metal

import (
	"errors"
)

// Errors
var (
	ErrMetalNotAvailable = errors.New("metal: Metal is not available in this build")
	ErrDeviceCreation    = errors.New("metal: failed to create Metal device")
	ErrBufferCreation    = errors.New("metal: failed to create buffer")
	ErrInvalidBuffer     = errors.New("metal: invalid buffer")
)

// StorageMode selects where a buffer lives.
type StorageMode int

const (
	StorageShared  StorageMode = 0
	StoragePrivate StorageMode = 1
)

// Device represents a Metal GPU device (stub).
type Device struct{}

// Buffer represents a Metal memory buffer (stub).
type Buffer struct{}

// IsAvailable returns false.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0.
func DeviceCount() int {
	return 0
}

// NewDevice returns ErrMetalNotAvailable.
func NewDevice() (*Device, error) {
	return nil, ErrMetalNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// Name returns empty string.
func (d *Device) Name() string { return "" }

// MemoryMB returns 0.
func (d *Device) MemoryMB() int { return 0 }

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []byte, mode StorageMode) (*Buffer, error) {
	return nil, ErrMetalNotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Write returns an error.
func (b *Buffer) Write(data []byte) error { return ErrMetalNotAvailable }

// Read returns an error.
func (b *Buffer) Read(dst []byte) error { return ErrMetalNotAvailable }
