package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	defer Configure(PoolConfig{Enabled: true})

	Configure(PoolConfig{Enabled: false})
	assert.False(t, IsEnabled())

	Configure(PoolConfig{Enabled: true, MaxBufferSize: 0})
	assert.True(t, IsEnabled())
	assert.Equal(t, DefaultMaxBufferSize, maxBufferSize())
}

func TestEncodeBuffer(t *testing.T) {
	buf := GetEncodeBuffer()
	assert.Zero(t, buf.Len())
	buf.WriteString("hello")
	PutEncodeBuffer(buf)

	again := GetEncodeBuffer()
	assert.Zero(t, again.Len(), "pooled buffers come back empty")
	PutEncodeBuffer(again)

	assert.NotPanics(t, func() { PutEncodeBuffer(nil) })
}

func TestByteBuffer(t *testing.T) {
	buf := GetByteBuffer()
	assert.Len(t, buf, 0)
	assert.GreaterOrEqual(t, cap(buf), 1024)
	buf = append(buf, 1, 2, 3)
	PutByteBuffer(buf)

	again := GetByteBuffer()
	assert.Len(t, again, 0)
	PutByteBuffer(again)
}

func TestOversizedBuffersAreDropped(t *testing.T) {
	defer Configure(PoolConfig{Enabled: true})
	Configure(PoolConfig{Enabled: true, MaxBufferSize: 16})

	big := make([]byte, 0, 64)
	assert.NotPanics(t, func() { PutByteBuffer(big) })

	buf := GetEncodeBuffer()
	buf.Grow(128)
	assert.NotPanics(t, func() { PutEncodeBuffer(buf) })
}

func TestDisabled(t *testing.T) {
	defer Configure(PoolConfig{Enabled: true})
	Configure(PoolConfig{Enabled: false})

	buf := GetByteBuffer()
	assert.Equal(t, 1024, cap(buf))
	PutByteBuffer(buf)

	eb := GetEncodeBuffer()
	assert.Zero(t, eb.Len())
	PutEncodeBuffer(eb)
}

func BenchmarkEncodeBuffer(b *testing.B) {
	payload := make([]byte, 512)
	for i := 0; i < b.N; i++ {
		buf := GetEncodeBuffer()
		buf.Write(payload)
		PutEncodeBuffer(buf)
	}
}
