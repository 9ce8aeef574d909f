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

	"github.com/poiesic/yojana/core"
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
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalScheme serializes a Scheme to bytes.
func MarshalScheme(scheme *core.Scheme) []byte {
	buf := make([]byte, core.SchemeMUS.Size(*scheme))
	core.SchemeMUS.Marshal(*scheme, buf)
	return buf
}

// UnmarshalScheme deserializes a Scheme from bytes.
func UnmarshalScheme(data []byte) (*core.Scheme, error) {
	scheme, _, err := core.SchemeMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: scheme: %w", ErrSerializationFailed, err)
	}
	return &scheme, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	buf := make([]byte, core.EmbeddingMUS.Size(*embedding))
	core.EmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding, _, err := core.EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", ErrSerializationFailed, err)
	}
	return &embedding, nil
}

// MarshalMatchRecord serializes a MatchRecord to bytes.
func MarshalMatchRecord(record *core.MatchRecord) []byte {
	buf := make([]byte, core.MatchRecordMUS.Size(*record))
	core.MatchRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalMatchRecord deserializes a MatchRecord from bytes.
func UnmarshalMatchRecord(data []byte) (*core.MatchRecord, error) {
	record, _, err := core.MatchRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: match record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}
