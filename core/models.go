package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// Thought IDs come from database sequences; semantic entry IDs are
// generated from content-based hashing so identical entities collapse
// to the same identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityType categorizes a semantic entry extracted from a thought.
type EntityType string

const (
	EntityTypePerson       EntityType = "person"
	EntityTypeLocation     EntityType = "location"
	EntityTypeDate         EntityType = "date"
	EntityTypeActivity     EntityType = "activity"
	EntityTypeEmotion      EntityType = "emotion"
	EntityTypeOrganization EntityType = "organization"
	EntityTypeEvent        EntityType = "event"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypePerson,
	EntityTypeLocation,
	EntityTypeDate,
	EntityTypeActivity,
	EntityTypeEmotion,
	EntityTypeOrganization,
	EntityTypeEvent,
}

// ParseEntityType returns the EntityType for s, or false if s is not a
// known type. Matching is exact; callers lowercase first.
func ParseEntityType(s string) (EntityType, bool) {
	for _, t := range EntityTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Thought is a user's free-text note with its extracted semantic entries.
// Entries and entry vectors are populated by the ingestion processors.
type Thought struct {
	Id         ID
	UserId     string // opaque owner key; every thought belongs to exactly one user
	Content    string
	Timestamp  time.Time         // when the thought was recorded by the user
	Metadata   map[string]string // optional metadata (e.g., "mood", "tag")
	Entries    []SemanticEntry   // semantic entries extracted from the content
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SemanticEntry is an entity extracted from a thought, with a type,
// value and extraction confidence.
type SemanticEntry struct {
	Id            ID
	ThoughtId     ID
	EntityType    EntityType
	EntityValue   string
	Confidence    float64 // extraction confidence in [0,1]
	Context       string  // the text fragment the entity was extracted from
	Relationships []Relationship
	Vector        []float32 // embedding for the entity tuple (populated by processors)
	ExtractedAt   time.Time
}

// Tuple returns a string representation of the entry as "(type,value)".
// This is used for generating deterministic IDs.
func (e *SemanticEntry) Tuple() string {
	return "(" + string(e.EntityType) + "," + e.EntityValue + ")"
}

// Relationship links two semantic entries by ID. Relationships form a
// flat adjacency list, so cyclic and bidirectional links need no
// back-references.
type Relationship struct {
	SourceEntityId ID
	TargetEntityId ID
	Kind           string
	Strength       float64 // in [0,1]
}

// Vector kinds stored in the vector index.
const (
	VectorKindThought = "thought"
	VectorKindEntity  = "entity"
)

// VectorMetadata describes the record behind an indexed vector.
// Thought vectors fill ContentPreview; entity vectors fill the
// Entity* fields.
type VectorMetadata struct {
	Kind           string // VectorKindThought or VectorKindEntity
	ThoughtId      ID
	UserId         string
	Timestamp      time.Time
	ContentPreview string
	EntityId       ID
	EntityType     string
	EntityValue    string
	Confidence     float64
}

// IndexedVector is an (id, vector, metadata) triple held by the vector index.
type IndexedVector struct {
	VectorId string // "thought_{thoughtId}" or "entity_{entryId}"
	Vector   []float32
	Meta     VectorMetadata
}

// VectorMatch is a single vector search hit. Score is normalized,
// higher means more similar.
type VectorMatch struct {
	VectorId string
	Score    float32
	Meta     VectorMetadata
}
