package backend

import (
	"strconv"

	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

// ModOp is one of the five modification semantics spec.md §4.4 lists.
type ModOp int

const (
	ModAdd ModOp = iota
	ModDelete
	ModReplace
	ModIncrement
	ModSoftAdd
)

// Mod is one declared modification, applied in order.
type Mod struct {
	Op     ModOp
	Attr   string
	Values []string

	// Permissive relaxes ADD's TypeOrValueExists and DELETE's
	// NoSuchAttribute into success, per spec.md §4.4's table.
	Permissive bool
}

// modify implements spec.md §4.4's modify: read, apply modifications
// in declared order, invalidate the cached schema-validity flag if
// objectClass is touched, re-validate, write atomically.
func (s *state) modify(raw string, mods []Mod) status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	norm, serr := s.normalize(raw)
	if serr != nil {
		return serr.Code
	}
	p, serr := s.path(norm)
	if serr != nil {
		return serr.Code
	}
	e, serr := s.decodeAt(p, norm)
	if serr != nil {
		return serr.Code
	}

	for _, m := range mods {
		if m.Attr == "objectClass" {
			e.InvalidateSchema()
		}
		switch m.Op {
		case ModAdd, ModSoftAdd:
			for _, v := range m.Values {
				if e.HasValue(m.Attr, v) {
					if m.Op == ModSoftAdd || m.Permissive {
						continue
					}
					return status.TypeOrValueExists
				}
				e.AddValue(m.Attr, v)
			}
		case ModDelete:
			if len(m.Values) == 0 {
				delete(e.Attrs, m.Attr)
				continue
			}
			for _, v := range m.Values {
				if !e.RemoveValue(m.Attr, v) && !m.Permissive {
					return status.NoSuchAttribute
				}
			}
		case ModReplace:
			if len(m.Values) == 0 {
				delete(e.Attrs, m.Attr)
			} else {
				e.Attrs[m.Attr] = append([]string(nil), m.Values...)
			}
		case ModIncrement:
			if code := incrementAttr(e, m.Attr, m.Values); code != status.Success {
				return code
			}
		}
	}

	if serr := s.schemaValidator(e); serr != nil {
		return serr.Code
	}

	leaf, err := dn.LeafRDN(norm)
	if err != nil {
		return status.Other
	}
	data := s.encodeLeaf(e, leaf)
	if serr := entryfile.WriteAtomic(p, data, 0o640); serr != nil {
		return serr.Code
	}
	return status.Success
}

// incrementAttr applies an INCREMENT mod: attr must currently hold
// exactly one integer-valued value, which is replaced by itself plus
// each delta in deltas, applied in order.
func incrementAttr(e *entry.Entry, attr string, deltas []string) status.Code {
	cur := e.Attrs[attr]
	if len(cur) != 1 {
		return status.NoSuchAttribute
	}
	n, err := strconv.ParseInt(cur[0], 10, 64)
	if err != nil {
		return status.UnwillingToPerform
	}
	for _, d := range deltas {
		delta, err := strconv.ParseInt(d, 10, 64)
		if err != nil {
			return status.UnwillingToPerform
		}
		n += delta
	}
	e.Attrs[attr] = []string{strconv.FormatInt(n, 10)}
	return status.Success
}
