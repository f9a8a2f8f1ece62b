package cuda

import (
	"errors"
	"testing"
)

func TestIsAvailableStub(t *testing.T) {
	if IsAvailable() {
		t.Error("IsAvailable() should return false on stub")
	}
}

func TestDeviceCountStub(t *testing.T) {
	if DeviceCount() != 0 {
		t.Error("DeviceCount() should return 0 on stub")
	}
}

func TestNewDeviceStub(t *testing.T) {
	device, err := NewDevice(0)
	if !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("NewDevice() error = %v, want ErrCUDANotAvailable", err)
	}
	if device != nil {
		t.Error("NewDevice() should return nil device on stub")
	}
}

func TestDeviceMethodsStub(t *testing.T) {
	var device Device

	// These should not panic
	device.Release()

	if device.Name() != "" {
		t.Error("Name() should return empty string")
	}
	if device.MemoryMB() != 0 {
		t.Error("MemoryMB() should return 0")
	}
}

func TestBufferStub(t *testing.T) {
	var device Device

	if _, err := device.NewBuffer([]byte{1, 2, 3}, MemoryDevice); !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("NewBuffer() error = %v, want ErrCUDANotAvailable", err)
	}

	var buffer Buffer
	buffer.Release()
	if err := buffer.Write([]byte{1}); !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("Write() error = %v, want ErrCUDANotAvailable", err)
	}
	if err := buffer.Read(make([]byte, 1)); !errors.Is(err, ErrCUDANotAvailable) {
		t.Errorf("Read() error = %v, want ErrCUDANotAvailable", err)
	}
}
