// Package chunk splits oversized JSON documents into bounded chunks with an
// index document referencing them.
//
// The splitter works on the top level of one document only: either the whole
// document (when it is an array) or one named array-or-object field of it.
// Object fields are split by insertion-order key groups, so parsing keeps
// member order instead of using Go maps.
package chunk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DefaultLimit is the maximum number of elements per chunk.
const DefaultLimit = 10000

// Member is one key/value pair of a JSON object, in encounter order.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Value is the ordered top-level parse of a JSON document. Exactly one of
// Object or Array is populated; element values stay opaque.
type Value struct {
	Object []Member
	Array  []json.RawMessage
	isObj  bool
}

// Len returns the element count of the container.
func (v *Value) Len() int {
	if v.isObj {
		return len(v.Object)
	}
	return len(v.Array)
}

// IsObject reports whether the value is a JSON object.
func (v *Value) IsObject() bool { return v.isObj }

// MarshalJSON re-serializes the value compactly, preserving member order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if v.isObj {
		buf.WriteByte('{')
		for i, m := range v.Object {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := json.Compact(&buf, m.Value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	buf.WriteByte('[')
	for i, e := range v.Array {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(&buf, e); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Parse reads the top level of one JSON document, keeping object member
// order intact.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, ErrTopLevelScalar
	}

	switch delim {
	case '{':
		v := &Value{isObj: true}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("parse JSON: %w", err)
			}
			key, _ := keyTok.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse JSON: %w", err)
			}
			v.Object = append(v.Object, Member{Key: key, Value: raw})
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return v, nil
	case '[':
		v := &Value{}
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("parse JSON: %w", err)
			}
			v.Array = append(v.Array, raw)
		}
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return v, nil
	}
	return nil, ErrTopLevelScalar
}

// Plan is the outcome of one split: the (possibly rewritten) index document
// and the ordered chunk payloads with their file names.
type Plan struct {
	Index  *Value   // document to write in place of the input
	Chunks []*Value // ordered chunk payloads; empty when no chunking occurred
	Names  []string // chunk file names referenced by the index
	Rows   int      // element count of the chunk target
}

// Chunked reports whether the plan produced any chunks.
func (p *Plan) Chunked() bool { return len(p.Chunks) > 0 }

// Split plans the chunking of one parsed document.
//
// For array documents the whole array is the target and no target key may be
// given. For object documents the target names a top-level member; an absent
// target makes the split a no-op. Targets at or under the limit are left in
// place. Oversized targets are cut into ordered chunks of at most limit
// elements and the document is rewritten with the target replaced by
// "chunkTarget" and "chunks" members.
//
// The row-count invariant (chunk elements sum to target elements) is checked
// before the plan is returned; a mismatch is fatal, never retried.
func Split(indexName string, doc *Value, target string, limit int) (*Plan, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if !doc.isObj {
		if target != "" {
			return nil, ErrTargetOnArray
		}
		rows := len(doc.Array)
		if rows <= limit {
			return &Plan{Index: doc, Rows: rows}, nil
		}
		chunks := splitElements(doc.Array, limit)
		names := chunkNames(indexName, len(chunks))
		index := &Value{isObj: true, Object: []Member{
			{Key: "chunks", Value: mustMarshal(names)},
		}}
		plan := &Plan{Index: index, Chunks: chunks, Names: names, Rows: rows}
		return plan, checkCounts(plan)
	}

	if target == "" {
		return &Plan{Index: doc}, nil
	}

	pos := -1
	for i, m := range doc.Object {
		if m.Key == target {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, &ErrNoSuchTarget{Target: target}
	}

	inner, err := Parse(doc.Object[pos].Value)
	if err != nil {
		return nil, &ErrBadTargetType{Target: target}
	}

	rows := inner.Len()
	if rows <= limit {
		return &Plan{Index: doc, Rows: rows}, nil
	}

	var chunks []*Value
	if inner.isObj {
		chunks = splitMembers(inner.Object, limit)
	} else {
		chunks = splitElements(inner.Array, limit)
	}
	names := chunkNames(indexName, len(chunks))

	// Drop the target member and reference the chunks instead.
	rewritten := make([]Member, 0, len(doc.Object)+1)
	rewritten = append(rewritten, doc.Object[:pos]...)
	rewritten = append(rewritten, doc.Object[pos+1:]...)
	rewritten = append(rewritten,
		Member{Key: "chunkTarget", Value: mustMarshal(target)},
		Member{Key: "chunks", Value: mustMarshal(names)},
	)

	plan := &Plan{
		Index:  &Value{isObj: true, Object: rewritten},
		Chunks: chunks,
		Names:  names,
		Rows:   rows,
	}
	return plan, checkCounts(plan)
}

func splitElements(elements []json.RawMessage, limit int) []*Value {
	var chunks []*Value
	for start := 0; start < len(elements); start += limit {
		end := start + limit
		if end > len(elements) {
			end = len(elements)
		}
		chunks = append(chunks, &Value{Array: elements[start:end]})
	}
	return chunks
}

func splitMembers(members []Member, limit int) []*Value {
	var chunks []*Value
	for start := 0; start < len(members); start += limit {
		end := start + limit
		if end > len(members) {
			end = len(members)
		}
		chunks = append(chunks, &Value{isObj: true, Object: members[start:end]})
	}
	return chunks
}

func checkCounts(plan *Plan) error {
	got := 0
	for _, chunk := range plan.Chunks {
		got += chunk.Len()
	}
	if got != plan.Rows {
		return &ErrCountMismatch{Want: plan.Rows, Got: got}
	}
	return nil
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Only strings and string slices pass through here.
		panic(err)
	}
	return data
}
