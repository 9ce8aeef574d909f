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


package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/yojana/core"
)

// Key prefixes for different data types
const (
	schemeRecordPrefix = "schrec:"
	schemeSlugPrefix   = "schslug:"
	embeddingPrefix    = "schemb:"
	matchRecordPrefix  = "matrec:"
)

// makeIDKey appends a big-endian ID to a prefix so keys sort by ID.
func makeIDKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeSchemeKey generates a key for a scheme by ID.
func makeSchemeKey(id core.ID) []byte {
	return makeIDKey(schemeRecordPrefix, id)
}

// makeEmbeddingKey generates a key for a scheme's embedding.
func makeEmbeddingKey(id core.ID) []byte {
	return makeIDKey(embeddingPrefix, id)
}

// makeSlugKey generates the secondary index key for slug lookups.
// Format: prefix:slug
func makeSlugKey(slug string) []byte {
	return []byte(schemeSlugPrefix + slug)
}

// makeUserMatchPrefix generates the key prefix for one user's match history.
// Format: prefix:hash(user)
// The user id is hashed so arbitrary strings cannot collide with the separator.
func makeUserMatchPrefix(userID string) []byte {
	return makeIDKey(matchRecordPrefix, core.IDFromContent(userID))
}

// makeMatchKey generates a composite key for one persisted match.
// Format: prefix:hash(user):timestamp:rank:schemeID
// Timestamps are big-endian so a user's history sorts chronologically.
func makeMatchKey(userID string, recordedAt time.Time, rank int, schemeID core.ID) []byte {
	prefix := makeUserMatchPrefix(userID)
	buf := make([]byte, len(prefix)+24)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(recordedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(rank))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(schemeID))
	return buf
}
