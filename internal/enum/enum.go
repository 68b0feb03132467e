// Package enum implements the Tree Enumerator of spec.md §4.3: a
// recursive descent over the encoded tree that reconstructs full DNs
// by inheriting the parent's DN through descent, honors the four
// search scopes, and streams results to a sink or buffers them for
// the batch tool interface (§4.6).
//
// The recursion shape follows the teacher's directory-tree walkers
// (internal/diskimage/d81_dir_ops.go's recursive partition walk) and
// mutagen's scanner (pkg/sync/scan.go): read the node, sort its
// children deterministically, recurse.
package enum

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/status"
)

// Scope is one of the four directory-service search scopes.
type Scope int

const (
	ScopeBase Scope = iota
	ScopeOneLevel
	ScopeSubtree
	ScopeSubordinate
)

// Filter decides whether an entry matches the search; a nil Filter
// matches everything.
type Filter func(*entry.Entry) bool

// StreamSink receives matching entries one at a time during a walk.
// Returning a non-nil error aborts the walk; the current entry is
// still considered delivered (freed) before the abort propagates.
type StreamSink interface {
	Deliver(e *entry.Entry, isReferral bool) error
}

// StreamSinkFunc adapts a function to StreamSink.
type StreamSinkFunc func(e *entry.Entry, isReferral bool) error

func (f StreamSinkFunc) Deliver(e *entry.Entry, isReferral bool) error { return f(e, isReferral) }

// Buffer is the growable accumulator used by the batch tool interface
// (spec.md §4.6). A plain Go slice already amortizes growth the way
// the source's hand-rolled "capacity 500, doubled on exhaustion"
// vector did, so Buffer is intentionally just append.
type Buffer struct {
	Items []*entry.Entry
}

func NewBuffer() *Buffer { return &Buffer{Items: make([]*entry.Entry, 0, 500)} }

func (b *Buffer) Deliver(e *entry.Entry, _ bool) error {
	b.Items = append(b.Items, e)
	return nil
}

// Walk enumerates the subtree rooted at startPath (the absolute
// encoded entry-file path of the search base), honoring scope and
// filter, and delivers matches to sink. serializerMu guards every
// entry.Decode call the same way backend/helpers.go's decodeAt does,
// per spec.md §5's "the entry serializer is not reentrant and must be
// called under a process-wide mutex" — search only holds the shared
// RLock, so without this the decode calls a concurrent walk makes
// would race other concurrent decode/encode calls.
func Walk(startPath string, scope Scope, filter Filter, manageDSAIT bool, sink StreamSink, serializerMu *sync.Mutex) *status.Error {
	return walk(startPath, true, "", scope, filter, manageDSAIT, sink, serializerMu)
}

func walk(path string, includeSelf bool, parentDN string, scope Scope, filter Filter, manageDSAIT bool, sink StreamSink, serializerMu *sync.Mutex) *status.Error {
	fullDN := parentDN

	if includeSelf {
		data, serr := readEntryFile(path)
		if serr != nil {
			return serr
		}
		serializerMu.Lock()
		e, err := entry.Decode(data)
		serializerMu.Unlock()
		if err != nil {
			return status.Wrap(status.Other, err, "decode entry at "+path)
		}
		if parentDN != "" {
			fullDN = e.Name + "," + parentDN
		} else {
			fullDN = e.Name
		}
		e.Name = fullDN
		e.NormName = fullDN

		if scope == ScopeBase || scope == ScopeSubtree {
			if filter == nil || filter(e) {
				referral := e.HasValue("objectClass", "referral") && !manageDSAIT && scope != ScopeBase
				if err := sink.Deliver(e, referral); err != nil {
					return status.Wrap(status.Other, err, "sink aborted enumeration")
				}
			}
		}
	}

	if scope == ScopeBase {
		return nil
	}

	subtreeDir := strings.TrimSuffix(path, dn.EntrySuffix)
	dirEntries, err := os.ReadDir(subtreeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no children
		}
		return status.New(status.Busy, "opendir "+subtreeDir+": "+err.Error())
	}

	names := make([]string, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasSuffix(name, dn.EntrySuffix) && len(name) > len(dn.EntrySuffix) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		bi := strings.TrimSuffix(names[i], dn.EntrySuffix)
		bj := strings.TrimSuffix(names[j], dn.EntrySuffix)
		return dn.CompareSiblings(bi, bj) < 0
	})

	childScope := scope
	switch scope {
	case ScopeOneLevel:
		childScope = ScopeBase
	case ScopeSubordinate:
		childScope = ScopeSubtree
	}

	for _, name := range names {
		childPath := filepath.Join(subtreeDir, name)
		if serr := walk(childPath, true, fullDN, childScope, filter, manageDSAIT, sink, serializerMu); serr != nil {
			return serr
		}
	}
	return nil
}

func readEntryFile(path string) ([]byte, *status.Error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, status.FromPathError(err, status.Other)
	}
	return b, nil
}
