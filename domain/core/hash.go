package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	DatasetFingerprint Hash
	ConfigHash         Hash
)

func NewDatasetFingerprint(data []byte) DatasetFingerprint { return DatasetFingerprint(NewHash(data)) }
func NewConfigHash(data []byte) ConfigHash                 { return ConfigHash(NewHash(data)) }

func (h DatasetFingerprint) String() string { return Hash(h).String() }
func (h ConfigHash) String() string         { return Hash(h).String() }

// HashFloats produces a hash over a float64 slice using exact bit patterns,
// so fingerprints are stable across runs and platforms.
func HashFloats(values []float64) Hash {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return NewHash(buf)
}

// DeriveSeed derives a child seed from a base seed and a stream name.
// The same (seed, name) pair always yields the same child, so concurrent
// stages can own independent deterministic streams.
func DeriveSeed(seed int64, name string) int64 {
	buf := make([]byte, 8, 8+len(name))
	binary.LittleEndian.PutUint64(buf, uint64(seed))
	buf = append(buf, name...)
	sum := sha256.Sum256(buf)
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}
