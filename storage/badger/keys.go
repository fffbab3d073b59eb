package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	indexRecordPrefix  = "idxrec"
	indexHistoryPrefix = "idxhist"
	indexLatestKey     = "idxlatest"
	indexSeq           = "idxseq"
)

// makeIndexRecordKey generates a key for an index record by ID.
func makeIndexRecordKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexRecordPrefix, id))
}

// makeIndexHistoryKey generates a key ordering saved indexes by save sequence.
// Format: prefix:seq
func makeIndexHistoryKey(seq uint64) []byte {
	prefix := indexHistoryPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
