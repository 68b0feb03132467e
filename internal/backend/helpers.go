package backend

import (
	"os"
	"strings"

	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

func readFile(path string) ([]byte, *status.Error) {
	return entryfile.ReadFile(path)
}

// subtreeDirOf returns the subtree-directory half of an entry-file
// path (spec.md §3: "the entry file <…>.ldif and its sibling-children
// directory <…> share the same path modulo the .ldif suffix").
func subtreeDirOf(entryFilePath string) string {
	return strings.TrimSuffix(entryFilePath, dn.EntrySuffix)
}

func ensureSuffixDirExists(baseDir string) error {
	return os.MkdirAll(baseDir, 0o750)
}

// normalize parses+normalizes raw and checks it is suffixed by the
// backend's configured suffix (spec.md §3).
func (s *state) normalize(raw string) (string, *status.Error) {
	norm, err := dn.Normalize(raw)
	if err != nil {
		return "", status.Wrap(status.UnwillingToPerform, err, "invalid DN")
	}
	if !dn.HasSuffix(norm, s.cfg.Suffix) {
		return "", status.New(status.UnwillingToPerform, "DN is not suffixed by the configured suffix")
	}
	return norm, nil
}

// path returns the absolute encoded entry-file path for a normalized,
// suffix-checked DN.
func (s *state) path(normDN string) (string, *status.Error) {
	p, err := dn.Encode(s.cfg.Directory, s.cfg.Suffix, normDN)
	if err != nil {
		return "", status.Wrap(status.Other, err, "encode path")
	}
	return p, nil
}

// decodeAt reads and decodes the entry file at path, rewriting its
// leaf-only DN to the full normDN the caller already knows (spec.md
// §4.4's get_entry: "if parent DN is non-empty, rewrite the parsed
// entry's leaf-only DN by appending the parent DN").
//
// The decode step runs under serializerMu, per spec.md §5 ("the
// entry serializer... is not reentrant and must be called under a
// process-wide mutex").
func (s *state) decodeAt(path string, normDN string) (*entry.Entry, *status.Error) {
	data, serr := readFile(path)
	if serr != nil {
		return nil, serr
	}
	s.serializerMu.Lock()
	e, err := entry.Decode(data)
	s.serializerMu.Unlock()
	if err != nil {
		return nil, status.Wrap(status.Other, err, "decode entry")
	}
	e.Name = normDN
	e.NormName = normDN
	return e, nil
}

// encodeLeaf serializes e using only its leaf RDN as the embedded DN
// (spec.md §4.2: "the DN embedded inside the entry's serialized form
// is reduced to its leaf RDN only"), under serializerMu. The suffix
// entry is the single opaque root segment of the tree, so its file
// embeds the whole suffix DN: a walk from the suffix starts from that
// name with no parent DN above it.
func (s *state) encodeLeaf(e *entry.Entry, leafRDN string) []byte {
	clone := e.Clone()
	clone.Name = leafRDN
	if e.NormName == s.cfg.Suffix {
		clone.Name = s.cfg.Suffix
	}
	s.serializerMu.Lock()
	data := entry.Encode(clone)
	s.serializerMu.Unlock()
	return data
}
