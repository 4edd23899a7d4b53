package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix follows the snapshot wire format, so a format change
// changes every id.
const (
	DomainSnapshot = "studio/snapshot/v" + SnapshotVersion
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00}) // Null separator prevents domain/data boundary ambiguity
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotID computes the content-addressed id of a snapshot.
// Two snapshots with the same objects in the same order and the same
// viewport have the same id.
func SnapshotID(s Snapshot) (string, error) {
	canonical, err := CanonicalSnapshot(s)
	if err != nil {
		return "", fmt.Errorf("SnapshotID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// MustSnapshotID is like SnapshotID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustSnapshotID(s Snapshot) string {
	id, err := SnapshotID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ShortID returns the first 12 hex characters of a snapshot id, for logs.
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
