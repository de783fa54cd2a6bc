// Copyright 2025 The Engram Authors
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
	"github.com/engramdb/engram/core"
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
	return id, err
}

// MarshalThought serializes a Thought to bytes.
func MarshalThought(thought *core.Thought) []byte {
	buf := make([]byte, core.ThoughtMUS.Size(*thought))
	core.ThoughtMUS.Marshal(*thought, buf)
	return buf
}

// UnmarshalThought deserializes a Thought from bytes.
func UnmarshalThought(data []byte) (*core.Thought, error) {
	thought, _, err := core.ThoughtMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &thought, nil
}

// MarshalIndexedVector serializes an IndexedVector to bytes.
func MarshalIndexedVector(vec *core.IndexedVector) []byte {
	buf := make([]byte, core.IndexedVectorMUS.Size(*vec))
	core.IndexedVectorMUS.Marshal(*vec, buf)
	return buf
}

// UnmarshalIndexedVector deserializes an IndexedVector from bytes.
func UnmarshalIndexedVector(data []byte) (*core.IndexedVector, error) {
	vec, _, err := core.IndexedVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &vec, nil
}
