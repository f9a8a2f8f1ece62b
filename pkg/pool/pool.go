// Package pool provides buffer pooling for replacer to reduce allocations.
//
// Pooling reuses allocated buffers instead of creating new ones, reducing GC
// pressure when sequences are encoded and checksummed at a high rate.
//
// Pooled objects:
//   - Encoding buffers (*bytes.Buffer) used by the gob record codec
//   - Byte slices used to assemble checksummed records
//
// Usage:
//
//	buf := pool.GetEncodeBuffer()
//	defer pool.PutEncodeBuffer(buf)
//
//	if err := gob.NewEncoder(buf).Encode(seq); err != nil {
//		return err
//	}
package pool

import (
	"bytes"
	"sync"
)

// PoolConfig configures pooling behavior.
//
// Fields:
//   - Enabled: Controls whether pooling is active (disable for debugging)
//   - MaxBufferSize: Buffers that grew beyond this capacity are dropped
//     instead of pooled, so one huge sequence does not pin memory forever
//
// Example:
//
//	pool.Configure(pool.PoolConfig{
//		Enabled:       true,
//		MaxBufferSize: 4 << 20,
//	})
type PoolConfig struct {
	// Enabled controls whether pooling is active
	Enabled bool

	// MaxBufferSize limits the capacity of buffers returned to a pool
	MaxBufferSize int
}

// DefaultMaxBufferSize is the pooled buffer capacity limit (1MB).
const DefaultMaxBufferSize = 1024 * 1024

var (
	configMu     sync.RWMutex
	globalConfig = PoolConfig{
		Enabled:       true,
		MaxBufferSize: DefaultMaxBufferSize,
	}
)

// Configure sets global pool configuration and reinitializes all pools.
//
// Call it once during startup, before buffers are handed out. A
// non-positive MaxBufferSize selects DefaultMaxBufferSize.
func Configure(config PoolConfig) {
	if config.MaxBufferSize <= 0 {
		config.MaxBufferSize = DefaultMaxBufferSize
	}

	configMu.Lock()
	globalConfig = config
	configMu.Unlock()

	initPools()
}

// initPools reinitializes all pools with their New functions.
func initPools() {
	encodeBufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 1024))
		},
	}
	byteBufferPool = sync.Pool{
		New: func() any {
			return make([]byte, 0, 1024)
		},
	}
}

// IsEnabled returns whether pooling is enabled.
func IsEnabled() bool {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig.Enabled
}

func maxBufferSize() int {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig.MaxBufferSize
}

// =============================================================================
// Encode Buffer Pool
// =============================================================================

var encodeBufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

// GetEncodeBuffer returns an empty *bytes.Buffer for encoders to write into.
//
// Callers that keep the encoded bytes past PutEncodeBuffer must copy them:
//
//	buf := pool.GetEncodeBuffer()
//	defer pool.PutEncodeBuffer(buf)
//	_ = gob.NewEncoder(buf).Encode(v)
//	out := append([]byte(nil), buf.Bytes()...)
func GetEncodeBuffer() *bytes.Buffer {
	if !IsEnabled() {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	}
	buf := encodeBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutEncodeBuffer returns buf to the pool. Buffers that grew past
// MaxBufferSize are discarded.
func PutEncodeBuffer(buf *bytes.Buffer) {
	if buf == nil || !IsEnabled() {
		return
	}
	if buf.Cap() > maxBufferSize() {
		return
	}
	buf.Reset()
	encodeBufferPool.Put(buf)
}

// =============================================================================
// Byte Buffer Pool
// =============================================================================

var byteBufferPool = sync.Pool{
	New: func() any {
		return make([]byte, 0, 1024)
	},
}

// GetByteBuffer returns a byte slice with length 0 and pooled capacity.
//
// Example - assembling a checksummed record:
//
//	buf := pool.GetByteBuffer()
//	defer pool.PutByteBuffer(buf)
//	buf = append(buf, sum[:]...)
//	buf = append(buf, payload...)
//	return append([]byte(nil), buf...)
func GetByteBuffer() []byte {
	if !IsEnabled() {
		return make([]byte, 0, 1024)
	}
	return byteBufferPool.Get().([]byte)[:0]
}

// PutByteBuffer returns buf to the pool. Don't use buf afterwards.
func PutByteBuffer(buf []byte) {
	if !IsEnabled() {
		return
	}
	if cap(buf) > maxBufferSize() {
		return
	}
	byteBufferPool.Put(buf[:0])
}
