package snapshot

import (
	"encoding/json"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	undo "github.com/dshills/undo"
)

// Record encodes r's persisted state layout:
//
//	{ target, entries: [{timestamp, command?}], cursor, limit, saved }
//
// limit and saved are JSON null when unbounded/unset, never 0 - a caller
// diffing two snapshots must be able to tell "no limit" apart from
// "limit of zero" (which Record itself refuses to construct anyway).
func Record[T any](r *undo.Record[T]) ([]byte, error) {
	limit := r.Limit()
	savedIdx, savedOK := r.SavedIndex()
	return recordDoc(r.Target(), r.Entries(), r.Cursor(), limit, savedIdx, savedOK)
}

func recordDoc[T any](target *T, entries []undo.Entry[T], cursor, limit, savedIdx int, savedOK bool) ([]byte, error) {
	doc := []byte("{}")
	var err error

	targetJSON, err := json.Marshal(target)
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetRawBytes(doc, "target", targetJSON); err != nil {
		return nil, err
	}

	entriesRaw, err := entriesJSON(entries)
	if err != nil {
		return nil, err
	}
	if doc, err = sjson.SetRawBytes(doc, "entries", entriesRaw); err != nil {
		return nil, err
	}

	if doc, err = sjson.SetBytes(doc, "cursor", cursor); err != nil {
		return nil, err
	}

	if limit > 0 {
		doc, err = sjson.SetBytes(doc, "limit", limit)
	} else {
		doc, err = sjson.SetBytes(doc, "limit", nil)
	}
	if err != nil {
		return nil, err
	}

	if savedOK {
		doc, err = sjson.SetBytes(doc, "saved", savedIdx)
	} else {
		doc, err = sjson.SetBytes(doc, "saved", nil)
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Cursor reads a projection's cursor field without a full unmarshal.
func Cursor(doc []byte) int { return int(gjson.GetBytes(doc, "cursor").Int()) }

// Limit reports a projection's limit field, distinguishing "unbounded"
// (JSON null) from a real limit of 0, which never legitimately occurs.
func Limit(doc []byte) (int, bool) {
	r := gjson.GetBytes(doc, "limit")
	if !r.Exists() || r.Type == gjson.Null {
		return 0, false
	}
	return int(r.Int()), true
}

// Saved reports a projection's saved-marker field, distinguishing "no
// marker" (JSON null) from a marker parked at entry 0.
func Saved(doc []byte) (int, bool) {
	r := gjson.GetBytes(doc, "saved")
	if !r.Exists() || r.Type == gjson.Null {
		return 0, false
	}
	return int(r.Int()), true
}

// EntryCount reads the number of entries in a projection without decoding
// each one.
func EntryCount(doc []byte) int {
	return len(gjson.GetBytes(doc, "entries").Array())
}

// TargetRaw returns the raw JSON of a projection's target field, for a
// caller that wants to unmarshal it into a concrete type itself.
func TargetRaw(doc []byte) []byte {
	return []byte(gjson.GetBytes(doc, "target").Raw)
}

// SetCursor patches a projection's cursor field in place, without the
// full decode/mutate/re-encode round trip a plain json.Unmarshal would
// need.
func SetCursor(doc []byte, cursor int) ([]byte, error) {
	return sjson.SetBytes(doc, "cursor", cursor)
}

// SetSaved patches a projection's saved-marker field in place. Pass
// ok=false to clear it back to JSON null.
func SetSaved(doc []byte, idx int, ok bool) ([]byte, error) {
	if !ok {
		return sjson.SetBytes(doc, "saved", nil)
	}
	return sjson.SetBytes(doc, "saved", idx)
}
