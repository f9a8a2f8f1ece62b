package vector

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/orneryd/replacer/pkg/gpu"
	"github.com/orneryd/replacer/pkg/system"
)

// Numeric lists the element types that can live in device memory.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

// deviceStore is the memory shared by a Device vector and its windows.
type deviceStore[T Numeric] struct {
	accel  *gpu.Accelerator
	data   []T // host shadow
	synced atomic.Bool

	mu  sync.Mutex
	buf *gpu.Buffer
}

// Device is a sequence owned by an Accelerator.
//
// Operations over a Device vector run on its accelerator. The accelerator
// keeps a host shadow of the data; SyncToDevice mirrors it into a backend
// buffer when a GPU is active. Any write invalidates the mirror.
type Device[T Numeric] struct {
	store  *deviceStore[T]
	lo, hi int
}

// NewDevice copies data into accelerator memory.
func NewDevice[T Numeric](accel *gpu.Accelerator, data []T) *Device[T] {
	store := &deviceStore[T]{
		accel: accel,
		data:  append([]T(nil), data...),
	}
	accel.RecordUpload(byteLen(store.data))
	return &Device[T]{store: store, lo: 0, hi: len(data)}
}

// NewDeviceZeroed allocates n zero values in accelerator memory.
func NewDeviceZeroed[T Numeric](accel *gpu.Accelerator, n int) *Device[T] {
	store := &deviceStore[T]{accel: accel, data: make([]T, n)}
	return &Device[T]{store: store, lo: 0, hi: n}
}

func (d *Device[T]) Len() int   { return d.hi - d.lo }
func (d *Device[T]) Cap() int   { return d.hi - d.lo }
func (d *Device[T]) At(i int) T { return d.store.data[d.lo+i] }

// Set writes v at position i and invalidates the device mirror.
func (d *Device[T]) Set(i int, v T) {
	d.store.data[d.lo+i] = v
	d.store.synced.Store(false)
}

// Raw exposes the host shadow window to kernels. Callers writing through it
// must call Invalidate afterwards.
func (d *Device[T]) Raw() []T { return d.store.data[d.lo:d.hi:d.hi] }

// Invalidate marks the device mirror stale.
func (d *Device[T]) Invalidate() { d.store.synced.Store(false) }

// System returns the owning accelerator.
func (d *Device[T]) System() system.System { return d.store.accel }

// Accelerator returns the owning accelerator.
func (d *Device[T]) Accelerator() *gpu.Accelerator { return d.store.accel }

// Sub returns the window [lo, hi) sharing memory with d.
func (d *Device[T]) Sub(lo, hi int) *Device[T] {
	if lo < 0 || hi < lo || hi > d.Len() {
		panic("vector: device window out of range")
	}
	return &Device[T]{store: d.store, lo: d.lo + lo, hi: d.lo + hi}
}

// ToHost copies the window back into a new host slice.
func (d *Device[T]) ToHost() []T {
	out := append([]T(nil), d.Raw()...)
	d.store.accel.RecordDownload(byteLen(out))
	return out
}

// IsSynced reports whether the backend mirror matches the data.
func (d *Device[T]) IsSynced() bool { return d.store.synced.Load() }

// SyncToDevice uploads the whole underlying store into a backend buffer.
// It returns gpu.ErrGPUDisabled when the accelerator runs in CPU mode.
func (d *Device[T]) SyncToDevice() error {
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.accel.IsEnabled() {
		return gpu.ErrGPUDisabled
	}
	if len(s.data) == 0 {
		s.synced.Store(true)
		return nil
	}

	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	buf, err := s.accel.NewBuffer(asBytes(s.data))
	if err != nil {
		return err
	}
	s.buf = buf
	s.synced.Store(true)
	return nil
}

// Release frees the backend mirror. The host shadow stays readable.
func (d *Device[T]) Release() {
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf != nil {
		s.buf.Release()
		s.buf = nil
	}
	s.synced.Store(false)
}

func byteLen[T Numeric](data []T) int64 {
	var zero T
	return int64(len(data)) * int64(unsafe.Sizeof(zero))
}

// asBytes reinterprets numeric data as its in-memory bytes without copying.
func asBytes[T Numeric](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), byteLen(data))
}
