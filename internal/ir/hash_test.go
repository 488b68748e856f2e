package ir

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordDigestDeterminism(t *testing.T) {
	rec := Record{ID: "p1", Label: "alice", Data: Object{"name": String("Alice"), "age": Int(30)}}

	first, err := RecordDigest(rec)
	require.NoError(t, err)
	second, err := RecordDigest(Record{ID: "p1", Label: "alice", Data: Object{"age": Int(30), "name": String("Alice")}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	_, err = hex.DecodeString(first)
	assert.NoError(t, err)
}

func TestRecordDigestChangesWithContent(t *testing.T) {
	a, err := RecordDigest(Record{ID: "p1", Label: "alice", Data: Object{"name": String("Alice")}})
	require.NoError(t, err)
	b, err := RecordDigest(Record{ID: "p1", Label: "alice", Data: Object{"name": String("Alicia")}})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	v := Object{"x": Int(1)}

	a, err := Digest(DomainRecord, v)
	require.NoError(t, err)
	b, err := Digest(DomainStore, v)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDigestErrorHandling(t *testing.T) {
	_, err := Digest(DomainRecord, Object{"ref": SymbolicRef{Table: "T", Key: "k"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest")
}
