package badger

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/engramdb/engram/core"
)

// Key prefixes for different data types
const (
	thoughtRecordPrefix   = "thorec"
	thoughtUserDatePrefix = "thouse"
	entityValuePrefix     = "thoval"
	vectorRecordPrefix    = "vecrec"
	thoughtIDSeq          = "thoseq"
)

// userHash hashes a user ID to a fixed-width key segment so composite
// keys sort correctly regardless of the user ID length.
func userHash(userID string) uint64 {
	return uint64(core.IDFromContent(userID))
}

// makeThoughtKey generates a key for a thought by ID.
func makeThoughtKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", thoughtRecordPrefix, id))
}

// makeUserDateKey generates a composite key for the per-user date index.
// Format: prefix:userHash:timestamp:id
func makeUserDateKey(userID string, timestamp time.Time, id core.ID) []byte {
	prefix := thoughtUserDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // 8 bytes each for user hash, timestamp, ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], userHash(userID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialUserDateKey generates a partial key for date range queries.
// Format: prefix:userHash:timestamp
func makePartialUserDateKey(userID string, timestamp time.Time) []byte {
	prefix := thoughtUserDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for user hash + 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], userHash(userID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeUserDatePrefix generates the key prefix covering all of a user's
// date index entries.
func makeUserDatePrefix(userID string) []byte {
	prefix := thoughtUserDatePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], userHash(userID))
	return buf
}

// makeEntityValueKey generates a composite key for the entity value
// suggestion index. The value is lowercased so prefix scans are
// case-insensitive.
// Format: prefix:userHash:valueLower
func makeEntityValueKey(userID, value string) []byte {
	lower := strings.ToLower(value)
	prefix := entityValuePrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8+len(lower))
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], userHash(userID))
	offset += 8
	copy(buf[offset:], lower)
	return buf
}

// makeEntityValuePrefix generates a partial key for entity value prefix
// scans.
func makeEntityValuePrefix(userID, valuePrefix string) []byte {
	return makeEntityValueKey(userID, valuePrefix)
}

// makeVectorKey generates a key for an indexed vector record.
func makeVectorKey(vectorID string) []byte {
	return []byte(vectorRecordPrefix + ":" + vectorID)
}

// marshalValueCount encodes an entity value occurrence count together
// with the display form of the value.
func marshalValueCount(count uint64, display string) []byte {
	buf := make([]byte, 8+len(display))
	binary.BigEndian.PutUint64(buf, count)
	copy(buf[8:], display)
	return buf
}

// unmarshalValueCount decodes an entity value count record.
func unmarshalValueCount(data []byte) (count uint64, display string) {
	if len(data) < 8 {
		return 0, ""
	}
	return binary.BigEndian.Uint64(data), string(data[8:])
}
