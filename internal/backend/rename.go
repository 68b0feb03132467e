package backend

import (
	"os"

	"github.com/Eldar88/openldap/internal/dn"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/entryfile"
	"github.com/Eldar88/openldap/internal/status"
)

// RenameRequest is a ModifyDN operation's parameters: the DN being
// renamed, the new RDN, whether the old RDN's values should be
// dropped from the entry, and an optional new superior DN.
type RenameRequest struct {
	DN           string
	NewRDN       string
	DeleteOldRDN bool
	NewSuperior  string // empty: keep the current parent
}

// rename implements spec.md §4.4's rename. This is the weakest
// atomicity point in the system: on success the new file is
// guaranteed in place. If unlinking the old file or renaming the old
// subtree directory fails after the new file has been written, the
// failure is logged and reported as status.Other; nothing is reverted,
// so the new file stays in place (and, after a directory-rename
// failure, the descendants stay under the old path).
func (s *state) rename(req RenameRequest) status.Code {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldNorm, serr := s.normalize(req.DN)
	if serr != nil {
		return serr.Code
	}
	oldPath, serr := s.path(oldNorm)
	if serr != nil {
		return serr.Code
	}
	e, serr := s.decodeAt(oldPath, oldNorm)
	if serr != nil {
		return serr.Code
	}

	newSuperior := req.NewSuperior
	if newSuperior == "" {
		parent, ok, err := dn.ParentOf(oldNorm)
		if err != nil {
			return status.Other
		}
		if ok {
			newSuperior = parent
		} else {
			newSuperior = s.cfg.Suffix
		}
	} else {
		superiorNorm, serr := s.normalize(newSuperior)
		if serr != nil {
			return serr.Code
		}
		newSuperior = superiorNorm
		superiorPath, serr := s.path(newSuperior)
		if serr != nil {
			return serr.Code
		}
		exists, serr := entryfile.Exists(superiorPath)
		if serr != nil {
			return serr.Code
		}
		if !exists {
			return status.NoSuchObject
		}
	}

	newDN := req.NewRDN + "," + newSuperior
	newNorm, serr := s.normalize(newDN)
	if serr != nil {
		return serr.Code
	}

	if serr := applyRDNRename(e, oldNorm, req.NewRDN, req.DeleteOldRDN); serr != status.Success {
		return serr
	}
	e.Name = newNorm
	e.NormName = newNorm

	if serr := s.schemaValidator(e); serr != nil {
		return serr.Code
	}

	newPath, serr := s.path(newNorm)
	if serr != nil {
		return serr.Code
	}
	alreadyExists, serr := entryfile.Exists(newPath)
	if serr != nil {
		return serr.Code
	}
	if alreadyExists {
		return status.AlreadyExists
	}

	if newNorm != s.cfg.Suffix {
		if code := s.ensureParentReady(newNorm); code != status.Success {
			return code
		}
	}

	leaf, err := dn.LeafRDN(newNorm)
	if err != nil {
		return status.Other
	}
	data := s.encodeLeaf(e, leaf)
	if serr := entryfile.WriteAtomic(newPath, data, 0o640); serr != nil {
		return serr.Code
	}

	if serr := entryfile.Unlink(oldPath); serr != nil {
		s.log.WithError(serr).Warn("rename: unlink of old entry file failed after new file was written")
		return status.Other
	}

	oldDir := subtreeDirOf(oldPath)
	newDir := subtreeDirOf(newPath)
	if _, err := os.Stat(oldDir); err == nil {
		if err := os.Rename(oldDir, newDir); err != nil {
			s.log.WithError(err).Warn("rename: subtree directory rename failed; new entry is in place, descendants left under old path")
			return status.Other
		}
	}

	return status.Success
}

// applyRDNRename replaces the naming attribute's values carried by
// oldNorm's leaf RDN with newRDN's, optionally dropping the old
// values entirely (DeleteOldRDN).
func applyRDNRename(e *entry.Entry, oldNorm, newRDN string, deleteOldRDN bool) status.Code {
	oldAttrs, oldValues, err := dn.RDNAVAs(oldNorm)
	if err != nil {
		return status.Other
	}
	newAttrs, newValues, err := dn.RDNAVAs(newRDN)
	if err != nil {
		return status.UnwillingToPerform
	}

	if deleteOldRDN {
		for i, attr := range oldAttrs {
			e.RemoveValue(attr, oldValues[i])
		}
	}
	for i, attr := range newAttrs {
		if !e.HasValue(attr, newValues[i]) {
			e.AddValue(attr, newValues[i])
		}
	}
	return status.Success
}
