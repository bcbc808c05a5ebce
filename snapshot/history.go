package snapshot

import (
	"encoding/json"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	undo "github.com/dshills/undo"
)

// History encodes h's persisted state layout:
//
//	{ root, next, saved: At|null, record: {...}, branches: { "b<id>": {id, parent, commands} } }
//
// Branch ids are int-valued but sjson treats a purely numeric path segment
// as an array index rather than an object key, so keys are written as
// "b<id>" (e.g. "b3") with the numeric id repeated inside the value under
// "id" for round-tripping.
func History[T any](h *undo.History[T]) ([]byte, error) {
	doc := []byte("{}")
	var err error

	if doc, err = sjson.SetBytes(doc, "root", h.Root()); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "next", h.Next()); err != nil {
		return nil, err
	}

	if at, ok := h.SavedAt(); ok {
		atJSON, err := json.Marshal(at)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "saved", atJSON)
		if err != nil {
			return nil, err
		}
	} else {
		if doc, err = sjson.SetBytes(doc, "saved", nil); err != nil {
			return nil, err
		}
	}

	savedIdx, savedOK := h.SavedIndex()
	recordRaw, err := recordDoc(h.Target(), h.Entries(), h.Cursor(), h.Limit(), savedIdx, savedOK)
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetRawBytes(doc, "record", recordRaw); err != nil {
		return nil, err
	}

	branchesDoc := []byte("{}")
	for id, b := range h.Branches() {
		key := "b" + strconv.Itoa(id)

		entry := []byte("{}")
		entry, err = sjson.SetBytes(entry, "id", id)
		if err != nil {
			return nil, err
		}
		parentJSON, err := json.Marshal(b.Parent)
		if err != nil {
			return nil, err
		}
		entry, err = sjson.SetRawBytes(entry, "parent", parentJSON)
		if err != nil {
			return nil, err
		}
		commandsRaw, err := entriesJSON(b.Commands)
		if err != nil {
			return nil, err
		}
		entry, err = sjson.SetRawBytes(entry, "commands", commandsRaw)
		if err != nil {
			return nil, err
		}

		branchesDoc, err = sjson.SetRawBytes(branchesDoc, key, entry)
		if err != nil {
			return nil, err
		}
	}
	if doc, err = sjson.SetRawBytes(doc, "branches", branchesDoc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Root reads a History projection's root field.
func Root(doc []byte) int { return int(gjson.GetBytes(doc, "root").Int()) }

// RecordRaw returns the raw JSON of a History projection's nested record
// field, for feeding into the Record-reading helpers (Cursor, Limit, ...).
func RecordRaw(doc []byte) []byte {
	return []byte(gjson.GetBytes(doc, "record").Raw)
}

// BranchIDs returns the ids of every inactive branch recorded in a History
// projection.
func BranchIDs(doc []byte) []int {
	var ids []int
	gjson.GetBytes(doc, "branches").ForEach(func(_, v gjson.Result) bool {
		ids = append(ids, int(v.Get("id").Int()))
		return true
	})
	return ids
}
