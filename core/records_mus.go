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


package core

import (
	"errors"
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Codec versions are written as the first field of each record so the
// layouts can evolve without a migration.
const (
	schemeCodecVersion      uint64 = 1
	embeddingCodecVersion   uint64 = 1
	matchRecordCodecVersion uint64 = 1
)

// ErrCodecVersion is returned when a stored record has an unknown layout.
var ErrCodecVersion = errors.New("unsupported record version")

// IDMUS serializes IDs as varints.
var IDMUS = idMUS{}

// SchemeMUS serializes Scheme values.
var SchemeMUS = schemeMUS{}

// EmbeddingMUS serializes Embedding values.
var EmbeddingMUS = embeddingMUS{}

// MatchRecordMUS serializes MatchRecord values.
var MatchRecordMUS = matchRecordMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type schemeMUS struct{}

func (schemeMUS) Marshal(v Scheme, bs []byte) (n int) {
	n = varint.Uint64.Marshal(schemeCodecVersion, bs)
	n += IDMUS.Marshal(v.Id, bs[n:])
	for _, s := range []string{v.Slug, v.Name, v.State, v.Category, v.Description} {
		n += ord.String.Marshal(s, bs[n:])
	}
	n += marshalStrings(v.Castes, bs[n:])
	for _, b := range []bool{v.RequiresMinority, v.RequiresDifferentlyAbled, v.RequiresBPL, v.RequiresStudent} {
		n += ord.Bool.Marshal(b, bs[n:])
	}
	n += marshalOptInt(v.MinAge, bs[n:])
	n += marshalOptInt(v.MaxAge, bs[n:])
	n += varint.Int64.Marshal(int64(v.Gender), bs[n:])
	n += marshalOptInt64(v.IncomeLimit, bs[n:])
	for _, s := range []string{v.Benefits, v.Eligibility, v.Process, v.Documents, v.URL} {
		n += ord.String.Marshal(s, bs[n:])
	}
	n += marshalStrings(v.Tags, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (schemeMUS) Unmarshal(bs []byte) (v Scheme, n int, err error) {
	r := &reader{bs: bs}
	if version := r.uint64(); r.err == nil && version != schemeCodecVersion {
		return v, r.n, ErrCodecVersion
	}
	v.Id = ID(r.uint64())
	v.Slug = r.string()
	v.Name = r.string()
	v.State = r.string()
	v.Category = r.string()
	v.Description = r.string()
	v.Castes = r.strings()
	v.RequiresMinority = r.bool()
	v.RequiresDifferentlyAbled = r.bool()
	v.RequiresBPL = r.bool()
	v.RequiresStudent = r.bool()
	v.MinAge = r.optInt()
	v.MaxAge = r.optInt()
	v.Gender = Gender(r.int64())
	v.IncomeLimit = r.optInt64()
	v.Benefits = r.string()
	v.Eligibility = r.string()
	v.Process = r.string()
	v.Documents = r.string()
	v.URL = r.string()
	v.Tags = r.strings()
	v.InsertedAt = r.time()
	v.UpdatedAt = r.time()
	return v, r.n, r.err
}

func (schemeMUS) Size(v Scheme) (size int) {
	size = varint.Uint64.Size(schemeCodecVersion)
	size += IDMUS.Size(v.Id)
	for _, s := range []string{v.Slug, v.Name, v.State, v.Category, v.Description} {
		size += ord.String.Size(s)
	}
	size += sizeStrings(v.Castes)
	for _, b := range []bool{v.RequiresMinority, v.RequiresDifferentlyAbled, v.RequiresBPL, v.RequiresStudent} {
		size += ord.Bool.Size(b)
	}
	size += sizeOptInt(v.MinAge)
	size += sizeOptInt(v.MaxAge)
	size += varint.Int64.Size(int64(v.Gender))
	size += sizeOptInt64(v.IncomeLimit)
	for _, s := range []string{v.Benefits, v.Eligibility, v.Process, v.Documents, v.URL} {
		size += ord.String.Size(s)
	}
	size += sizeStrings(v.Tags)
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

type embeddingMUS struct{}

func (embeddingMUS) Marshal(v Embedding, bs []byte) (n int) {
	n = varint.Uint64.Marshal(embeddingCodecVersion, bs)
	n += IDMUS.Marshal(v.SchemeId, bs[n:])
	n += IDMUS.Marshal(v.TextHash, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(v.Vector)), bs[n:])
	for _, f := range v.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func (embeddingMUS) Unmarshal(bs []byte) (v Embedding, n int, err error) {
	r := &reader{bs: bs}
	if version := r.uint64(); r.err == nil && version != embeddingCodecVersion {
		return v, r.n, ErrCodecVersion
	}
	v.SchemeId = ID(r.uint64())
	v.TextHash = ID(r.uint64())
	v.Model = r.string()
	count := r.length()
	if r.err != nil {
		return v, r.n, r.err
	}
	if count > 0 {
		v.Vector = make([]float32, count)
		for i := range v.Vector {
			v.Vector[i] = math.Float32frombits(r.uint32())
		}
	}
	return v, r.n, r.err
}

func (embeddingMUS) Size(v Embedding) (size int) {
	size = varint.Uint64.Size(embeddingCodecVersion)
	size += IDMUS.Size(v.SchemeId)
	size += IDMUS.Size(v.TextHash)
	size += ord.String.Size(v.Model)
	size += varint.Uint64.Size(uint64(len(v.Vector)))
	for _, f := range v.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

type matchRecordMUS struct{}

func (matchRecordMUS) Marshal(v MatchRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(matchRecordCodecVersion, bs)
	n += ord.String.Marshal(v.UserId, bs[n:])
	n += IDMUS.Marshal(v.SchemeId, bs[n:])
	n += ord.String.Marshal(v.Slug, bs[n:])
	n += varint.Int64.Marshal(int64(v.Rank), bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(v.Score), bs[n:])
	n += varint.Int64.Marshal(int64(v.MatchedBy), bs[n:])
	n += marshalTime(v.RecordedAt, bs[n:])
	return n
}

func (matchRecordMUS) Unmarshal(bs []byte) (v MatchRecord, n int, err error) {
	r := &reader{bs: bs}
	if version := r.uint64(); r.err == nil && version != matchRecordCodecVersion {
		return v, r.n, ErrCodecVersion
	}
	v.UserId = r.string()
	v.SchemeId = ID(r.uint64())
	v.Slug = r.string()
	v.Rank = int(r.int64())
	v.Score = math.Float64frombits(r.uint64())
	v.MatchedBy = MatchedBy(r.int64())
	v.RecordedAt = r.time()
	return v, r.n, r.err
}

func (matchRecordMUS) Size(v MatchRecord) (size int) {
	size = varint.Uint64.Size(matchRecordCodecVersion)
	size += ord.String.Size(v.UserId)
	size += IDMUS.Size(v.SchemeId)
	size += ord.String.Size(v.Slug)
	size += varint.Int64.Size(int64(v.Rank))
	size += varint.Uint64.Size(math.Float64bits(v.Score))
	size += varint.Int64.Size(int64(v.MatchedBy))
	size += sizeTime(v.RecordedAt)
	return size
}

// Times are stored as Unix microseconds in UTC. The zero time is stored as 0.

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(timeToMicro(t), bs)
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(timeToMicro(t))
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(len(v)), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func sizeStrings(v []string) (size int) {
	size = varint.Uint64.Size(uint64(len(v)))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalOptInt(v *int, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v != nil {
		n += varint.Int64.Marshal(int64(*v), bs[n:])
	}
	return n
}

func sizeOptInt(v *int) (size int) {
	size = ord.Bool.Size(v != nil)
	if v != nil {
		size += varint.Int64.Size(int64(*v))
	}
	return size
}

func marshalOptInt64(v *int64, bs []byte) (n int) {
	n = ord.Bool.Marshal(v != nil, bs)
	if v != nil {
		n += varint.Int64.Marshal(*v, bs[n:])
	}
	return n
}

func sizeOptInt64(v *int64) (size int) {
	size = ord.Bool.Size(v != nil)
	if v != nil {
		size += varint.Int64.Size(*v)
	}
	return size
}

// reader walks a buffer, remembering the first error so decoders can
// read every field and check once at the end.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) uint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) uint32() uint32 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint32.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) bool() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

// length reads a collection length and rejects values larger than the
// remaining buffer could hold.
func (r *reader) length() int {
	l := r.uint64()
	if r.err == nil && l > uint64(len(r.bs)-r.n) {
		r.err = errors.New("collection length exceeds buffer")
		return 0
	}
	return int(l)
}

func (r *reader) strings() []string {
	count := r.length()
	if r.err != nil || count == 0 {
		return nil
	}
	out := make([]string, count)
	for i := range out {
		out[i] = r.string()
	}
	return out
}

func (r *reader) optInt() *int {
	if !r.bool() {
		return nil
	}
	v := int(r.int64())
	if r.err != nil {
		return nil
	}
	return &v
}

func (r *reader) optInt64() *int64 {
	if !r.bool() {
		return nil
	}
	v := r.int64()
	if r.err != nil {
		return nil
	}
	return &v
}

func (r *reader) time() time.Time {
	micro := r.int64()
	if r.err != nil || micro == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micro).UTC()
}
