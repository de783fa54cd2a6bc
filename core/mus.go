package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the domain types persisted by the
// storage layer. Timestamps travel as Unix microseconds and are
// restored in UTC.
var (
	IDMUS             = idMUS{}
	RelationshipMUS   = relationshipMUS{}
	SemanticEntryMUS  = semanticEntryMUS{}
	ThoughtMUS        = thoughtMUS{}
	VectorMetadataMUS = vectorMetadataMUS{}
	IndexedVectorMUS  = indexedVectorMUS{}
)

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

func (s idMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// time helpers

func marshalTime(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (v time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

// vector helpers

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Float32.Marshal(f, bs[n:])
	}
	return
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Float32.Size(f)
	}
	return
}

// metadata map helpers

func marshalStringMap(v map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for key, val := range v {
		n += ord.String.Marshal(key, bs[n:])
		n += ord.String.Marshal(val, bs[n:])
	}
	return
}

func unmarshalStringMap(bs []byte) (v map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	v = make(map[string]string, length)
	var (
		key, val string
		n1       int
	)
	for i := 0; i < length; i++ {
		key, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		val, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
		v[key] = val
	}
	return
}

func sizeStringMap(v map[string]string) (size int) {
	size = varint.Int.Size(len(v))
	for key, val := range v {
		size += ord.String.Size(key)
		size += ord.String.Size(val)
	}
	return
}

type relationshipMUS struct{}

func (relationshipMUS) Marshal(v Relationship, bs []byte) (n int) {
	n = IDMUS.Marshal(v.SourceEntityId, bs)
	n += IDMUS.Marshal(v.TargetEntityId, bs[n:])
	n += ord.String.Marshal(v.Kind, bs[n:])
	n += varint.Float64.Marshal(v.Strength, bs[n:])
	return
}

func (relationshipMUS) Unmarshal(bs []byte) (v Relationship, n int, err error) {
	var n1 int
	v.SourceEntityId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.TargetEntityId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Strength, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (relationshipMUS) Size(v Relationship) (size int) {
	size = IDMUS.Size(v.SourceEntityId)
	size += IDMUS.Size(v.TargetEntityId)
	size += ord.String.Size(v.Kind)
	size += varint.Float64.Size(v.Strength)
	return
}

func (s relationshipMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type semanticEntryMUS struct{}

func (semanticEntryMUS) Marshal(v SemanticEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.ThoughtId, bs[n:])
	n += ord.String.Marshal(string(v.EntityType), bs[n:])
	n += ord.String.Marshal(v.EntityValue, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	n += ord.String.Marshal(v.Context, bs[n:])
	n += varint.Int.Marshal(len(v.Relationships), bs[n:])
	for _, rel := range v.Relationships {
		n += RelationshipMUS.Marshal(rel, bs[n:])
	}
	n += marshalVector(v.Vector, bs[n:])
	n += marshalTime(v.ExtractedAt, bs[n:])
	return
}

func (semanticEntryMUS) Unmarshal(bs []byte) (v SemanticEntry, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ThoughtId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var entityType string
	entityType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntityType = EntityType(entityType)
	v.EntityValue, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Context, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var relCount int
	relCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if relCount > 0 {
		v.Relationships = make([]Relationship, relCount)
		for i := 0; i < relCount; i++ {
			v.Relationships[i], n1, err = RelationshipMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ExtractedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (semanticEntryMUS) Size(v SemanticEntry) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.ThoughtId)
	size += ord.String.Size(string(v.EntityType))
	size += ord.String.Size(v.EntityValue)
	size += varint.Float64.Size(v.Confidence)
	size += ord.String.Size(v.Context)
	size += varint.Int.Size(len(v.Relationships))
	for _, rel := range v.Relationships {
		size += RelationshipMUS.Size(rel)
	}
	size += sizeVector(v.Vector)
	size += sizeTime(v.ExtractedAt)
	return
}

func (s semanticEntryMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type thoughtMUS struct{}

func (thoughtMUS) Marshal(v Thought, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.UserId, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += marshalTime(v.Timestamp, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	n += varint.Int.Marshal(len(v.Entries), bs[n:])
	for _, entry := range v.Entries {
		n += SemanticEntryMUS.Marshal(entry, bs[n:])
	}
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return
}

func (thoughtMUS) Unmarshal(bs []byte) (v Thought, n int, err error) {
	var n1 int
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.UserId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Content, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = unmarshalStringMap(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var entryCount int
	entryCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if entryCount > 0 {
		v.Entries = make([]SemanticEntry, entryCount)
		for i := 0; i < entryCount; i++ {
			v.Entries[i], n1, err = SemanticEntryMUS.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	v.InsertedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = unmarshalTime(bs[n:])
	n += n1
	return
}

func (thoughtMUS) Size(v Thought) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.UserId)
	size += ord.String.Size(v.Content)
	size += sizeTime(v.Timestamp)
	size += sizeStringMap(v.Metadata)
	size += varint.Int.Size(len(v.Entries))
	for _, entry := range v.Entries {
		size += SemanticEntryMUS.Size(entry)
	}
	size += sizeTime(v.InsertedAt)
	size += sizeTime(v.UpdatedAt)
	return
}

func (s thoughtMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type vectorMetadataMUS struct{}

func (vectorMetadataMUS) Marshal(v VectorMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(v.Kind, bs)
	n += IDMUS.Marshal(v.ThoughtId, bs[n:])
	n += ord.String.Marshal(v.UserId, bs[n:])
	n += marshalTime(v.Timestamp, bs[n:])
	n += ord.String.Marshal(v.ContentPreview, bs[n:])
	n += IDMUS.Marshal(v.EntityId, bs[n:])
	n += ord.String.Marshal(v.EntityType, bs[n:])
	n += ord.String.Marshal(v.EntityValue, bs[n:])
	n += varint.Float64.Marshal(v.Confidence, bs[n:])
	return
}

func (vectorMetadataMUS) Unmarshal(bs []byte) (v VectorMetadata, n int, err error) {
	var n1 int
	v.Kind, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.ThoughtId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UserId, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Timestamp, n1, err = unmarshalTime(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ContentPreview, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntityId, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntityType, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntityValue, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Confidence, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (vectorMetadataMUS) Size(v VectorMetadata) (size int) {
	size = ord.String.Size(v.Kind)
	size += IDMUS.Size(v.ThoughtId)
	size += ord.String.Size(v.UserId)
	size += sizeTime(v.Timestamp)
	size += ord.String.Size(v.ContentPreview)
	size += IDMUS.Size(v.EntityId)
	size += ord.String.Size(v.EntityType)
	size += ord.String.Size(v.EntityValue)
	size += varint.Float64.Size(v.Confidence)
	return
}

func (s vectorMetadataMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

type indexedVectorMUS struct{}

func (indexedVectorMUS) Marshal(v IndexedVector, bs []byte) (n int) {
	n = ord.String.Marshal(v.VectorId, bs)
	n += marshalVector(v.Vector, bs[n:])
	n += VectorMetadataMUS.Marshal(v.Meta, bs[n:])
	return
}

func (indexedVectorMUS) Unmarshal(bs []byte) (v IndexedVector, n int, err error) {
	var n1 int
	v.VectorId, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Vector, n1, err = unmarshalVector(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Meta, n1, err = VectorMetadataMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (indexedVectorMUS) Size(v IndexedVector) (size int) {
	size = ord.String.Size(v.VectorId)
	size += sizeVector(v.Vector)
	size += VectorMetadataMUS.Size(v.Meta)
	return
}

func (s indexedVectorMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
