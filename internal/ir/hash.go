package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainRecord = "relatix/record/v1"
	DomainStore  = "relatix/store/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest hashes the canonical encoding of v under domain.
func Digest(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// RecordDigest is the content digest of a record.
func RecordDigest(r Record) (string, error) {
	return Digest(DomainRecord, r)
}

// DigestBytes hashes already-canonical bytes under domain.
func DigestBytes(domain string, canonical []byte) string {
	return hashWithDomain(domain, canonical)
}
