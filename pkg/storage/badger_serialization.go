// Package storage - Serialization helpers for BadgerDB.
package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/orneryd/replacer/pkg/pool"
)

// checksumSize is the length of the BLAKE2b-256 prefix on every record.
const checksumSize = blake2b.Size256

// serializeSequence converts a Sequence to checksummed gob bytes.
// Layout: blake2b-256(payload) || payload.
func serializeSequence(seq *Sequence) ([]byte, error) {
	buf := pool.GetEncodeBuffer()
	defer pool.PutEncodeBuffer(buf)

	if err := gob.NewEncoder(buf).Encode(seq); err != nil {
		return nil, fmt.Errorf("encoding sequence: %w", err)
	}
	payload := buf.Bytes()
	sum := blake2b.Sum256(payload)

	out := make([]byte, 0, checksumSize+len(payload))
	out = append(out, sum[:]...)
	return append(out, payload...), nil
}

// deserializeSequence verifies the checksum and decodes a Sequence.
func deserializeSequence(data []byte) (*Sequence, error) {
	if len(data) < checksumSize {
		return nil, fmt.Errorf("%w: record too short (%d bytes)", ErrChecksumMismatch, len(data))
	}
	payload := data[checksumSize:]
	sum := blake2b.Sum256(payload)
	if !bytes.Equal(sum[:], data[:checksumSize]) {
		return nil, ErrChecksumMismatch
	}

	var seq Sequence
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&seq); err != nil {
		return nil, fmt.Errorf("decoding sequence: %w", err)
	}
	return &seq, nil
}
