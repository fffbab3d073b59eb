// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/poiesic/vecload/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalIndexRecord serializes an IndexRecord to bytes.
// CreatedAt is stored with microsecond precision.
func MarshalIndexRecord(record *IndexRecord) []byte {
	buf := make([]byte, IndexRecordMUS.Size(*record))
	IndexRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalIndexRecord deserializes an IndexRecord from bytes.
// Empty ID lists decode as nil and CreatedAt is returned in UTC.
func UnmarshalIndexRecord(data []byte) (*IndexRecord, error) {
	record, _, err := IndexRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if len(record.NodeIDs) == 0 {
		record.NodeIDs = nil
	}
	if len(record.DocumentIDs) == 0 {
		record.DocumentIDs = nil
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
