package report

// IDField is the key holding a record's identifier.
const IDField = "_id"

// refFields are the fields kept when a referenced user is populated.
var refFields = []string{IDField, "name", "email"}

// RefID returns the identifier held by a reference field: the id itself, or the _id of an
// already populated reference.
func RefID(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case Record:
		id, ok := val.Get(IDField)
		if !ok {
			return "", false
		}
		return RefID(id)
	}
	s, ok := scalar(v)
	return s, ok && s != ""
}

// RefIDs collects the distinct identifiers referenced by key across records, in first-seen order.
func RefIDs(records []Record, key string) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, rec := range records {
		v, _ := rec.Get(key)
		if id, ok := RefID(v); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Ref projects a referenced record onto its _id, name and email.
func Ref(r Record) Record {
	ref := make(Record, 0, len(refFields))
	for _, key := range refFields {
		if v, ok := r.Get(key); ok {
			ref = append(ref, Field{Key: key, Value: v})
		}
	}
	return ref
}

// Populate replaces the reference held by key in every record with its projection from refs,
// keyed by _id. A dangling reference becomes null. Records are modified in place.
func Populate(records []Record, key string, refs map[string]Record) {
	for i, rec := range records {
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		id, ok := RefID(v)
		if !ok {
			continue
		}
		if ref, found := refs[id]; found {
			records[i] = rec.Set(key, Ref(ref))
		} else {
			records[i] = rec.Set(key, nil)
		}
	}
}
