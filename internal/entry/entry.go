// Package entry defines the directory entry value object and its
// textual on-disk serialization. spec.md declares both the entry
// model's parser and schema validation external collaborators not
// specified by the core; this package is the concrete, minimal LDIF-
// shaped implementation those hooks need to compile and be tested
// against.
package entry

// Entry is a directory entry, per spec.md §3. Name is the DN in
// display form; NormName is the canonical DN used for comparison.
// Attrs is case-preserving on first insertion; lookups are by exact
// attribute-type string (schema-level case folding is the external
// schema validator's job, out of scope here).
type Entry struct {
	Name     string
	NormName string
	Attrs    map[string][]string

	// objectClassValid caches whether this entry last passed schema
	// validation; it is cleared whenever a modification touches
	// objectClass, per spec.md §4.4.
	objectClassValid bool
}

func New(name, normName string) *Entry {
	return &Entry{Name: name, NormName: normName, Attrs: map[string][]string{}}
}

func (e *Entry) Clone() *Entry {
	c := &Entry{Name: e.Name, NormName: e.NormName, objectClassValid: e.objectClassValid}
	c.Attrs = make(map[string][]string, len(e.Attrs))
	for k, v := range e.Attrs {
		cp := make([]string, len(v))
		copy(cp, v)
		c.Attrs[k] = cp
	}
	return c
}

func (e *Entry) SchemaValid() bool     { return e.objectClassValid }
func (e *Entry) SetSchemaValid(v bool) { e.objectClassValid = v }

// InvalidateSchema clears the cached validation flag; call whenever a
// modification touches objectClass (spec.md §4.4).
func (e *Entry) InvalidateSchema() { e.objectClassValid = false }

// HasValue reports whether attr already carries value (case-sensitive
// on the value, matching the values seen in practice for DN RDN
// attributes; higher layers needing attribute-specific matching rules
// apply their own collation before calling into this package).
func (e *Entry) HasValue(attr, value string) bool {
	for _, v := range e.Attrs[attr] {
		if v == value {
			return true
		}
	}
	return false
}

func (e *Entry) AddValue(attr, value string) {
	e.Attrs[attr] = append(e.Attrs[attr], value)
}

func (e *Entry) RemoveValue(attr, value string) bool {
	vals := e.Attrs[attr]
	for i, v := range vals {
		if v == value {
			e.Attrs[attr] = append(vals[:i], vals[i+1:]...)
			if len(e.Attrs[attr]) == 0 {
				delete(e.Attrs, attr)
			}
			return true
		}
	}
	return false
}
