// Package vulkan binds the Vulkan runtime for device-resident sequences.
// This build carries no native Vulkan bindings: IsAvailable reports false and
// every constructor returns ErrVulkanNotAvailable.
package vulkan

import (
	"errors"
)

// Errors
var (
	ErrVulkanNotAvailable = errors.New("vulkan: Vulkan is not available in this build")
	ErrDeviceCreation     = errors.New("vulkan: failed to create Vulkan device")
	ErrBufferCreation     = errors.New("vulkan: failed to create buffer")
	ErrInvalidBuffer      = errors.New("vulkan: invalid buffer")
)

// Device represents a Vulkan GPU device (stub).
type Device struct{}

// Buffer represents a Vulkan memory buffer (stub).
type Buffer struct{}

// IsAvailable returns false.
func IsAvailable() bool {
	return false
}

// DeviceCount returns 0.
func DeviceCount() int {
	return 0
}

// NewDevice returns ErrVulkanNotAvailable.
func NewDevice(deviceID int) (*Device, error) {
	return nil, ErrVulkanNotAvailable
}

// Release is a no-op stub.
func (d *Device) Release() {}

// Name returns empty string.
func (d *Device) Name() string { return "" }

// MemoryMB returns 0.
func (d *Device) MemoryMB() int { return 0 }

// NewBuffer returns an error.
func (d *Device) NewBuffer(data []byte) (*Buffer, error) {
	return nil, ErrVulkanNotAvailable
}

// Release is a no-op stub.
func (b *Buffer) Release() {}

// Write returns an error.
func (b *Buffer) Write(data []byte) error { return ErrVulkanNotAvailable }

// Read returns an error.
func (b *Buffer) Read(dst []byte) error { return ErrVulkanNotAvailable }
