package backend

import (
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gotest.tools/v3/assert"

	"github.com/Eldar88/openldap/internal/config"
	"github.com/Eldar88/openldap/internal/entry"
	"github.com/Eldar88/openldap/internal/enum"
	"github.com/Eldar88/openldap/internal/status"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	cfg := config.Config{
		Directory: t.TempDir(),
		Suffix:    "dc=example,dc=com",
	}
	be, err := New(cfg)
	assert.NilError(t, err)
	assert.NilError(t, be.DBInit())
	assert.NilError(t, be.DBOpen())
	return be
}

func newTestEntry(dn string, attrs map[string][]string) *entry.Entry {
	e := entry.New(dn, dn)
	for k, vs := range attrs {
		for _, v := range vs {
			e.AddValue(k, v)
		}
	}
	return e
}

func TestAddGetDelete(t *testing.T) {
	be := newTestBackend(t)

	root := newTestEntry("dc=example,dc=com", map[string][]string{"objectClass": {"domain"}})
	assert.Equal(t, be.Add(root), status.Success)

	alice := newTestEntry("cn=alice,dc=example,dc=com", map[string][]string{
		"objectClass": {"person"},
		"cn":          {"alice"},
	})
	assert.Equal(t, be.Add(alice), status.Success)

	// scenario 1: path layout.
	got, code := be.GetEntry("cn=alice,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
	assert.Equal(t, got.Name, "cn=alice,dc=example,dc=com")

	// P2/AlreadyExists.
	assert.Equal(t, be.Add(alice), status.AlreadyExists)

	// P7: parent must exist before a child can be added.
	orphan := newTestEntry("cn=z,cn=missing,dc=example,dc=com", nil)
	assert.Equal(t, be.Add(orphan), status.NoSuchObject)

	assert.Equal(t, be.Delete("cn=alice,dc=example,dc=com"), status.Success)
	_, code = be.GetEntry("cn=alice,dc=example,dc=com")
	assert.Equal(t, code, status.NoSuchObject)
}

func TestDeleteNonLeafFails(t *testing.T) {
	// P4/scenario 4.
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=bob,dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=carol,cn=bob,dc=example,dc=com", nil)), status.Success)

	assert.Equal(t, be.Delete("cn=bob,dc=example,dc=com"), status.NotAllowedOnNonLeaf)
	_, code := be.GetEntry("cn=bob,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
}

func TestModifyAddDeleteReplace(t *testing.T) {
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=alice,dc=example,dc=com", map[string][]string{
		"mail": {"a@example.com"},
	})), status.Success)

	code := be.Modify("cn=alice,dc=example,dc=com", []Mod{
		{Op: ModAdd, Attr: "mail", Values: []string{"alt@example.com"}},
	})
	assert.Equal(t, code, status.Success)

	e, code := be.GetEntry("cn=alice,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
	assert.Equal(t, len(e.Attrs["mail"]), 2)

	code = be.Modify("cn=alice,dc=example,dc=com", []Mod{
		{Op: ModAdd, Attr: "mail", Values: []string{"alt@example.com"}},
	})
	assert.Equal(t, code, status.TypeOrValueExists)

	code = be.Modify("cn=alice,dc=example,dc=com", []Mod{
		{Op: ModReplace, Attr: "mail", Values: []string{"only@example.com"}},
	})
	assert.Equal(t, code, status.Success)
	e, _ = be.GetEntry("cn=alice,dc=example,dc=com")
	assert.DeepEqual(t, e.Attrs["mail"], []string{"only@example.com"})

	code = be.Modify("cn=alice,dc=example,dc=com", []Mod{
		{Op: ModDelete, Attr: "mail"},
	})
	assert.Equal(t, code, status.Success)
	e, _ = be.GetEntry("cn=alice,dc=example,dc=com")
	_, ok := e.Attrs["mail"]
	assert.Assert(t, !ok)
}

func TestModifyIncrement(t *testing.T) {
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	e := newTestEntry("cn=alice,dc=example,dc=com", map[string][]string{"loginCount": {"5"}})
	assert.Equal(t, be.Add(e), status.Success)

	code := be.Modify("cn=alice,dc=example,dc=com", []Mod{
		{Op: ModIncrement, Attr: "loginCount", Values: []string{"1"}},
	})
	assert.Equal(t, code, status.Success)
	got, _ := be.GetEntry("cn=alice,dc=example,dc=com")
	assert.DeepEqual(t, got.Attrs["loginCount"], []string{"6"})
}

func TestRenamePreservesSubtree(t *testing.T) {
	// P8/scenario: rename of an entry with children.
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=bob,dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=carol,cn=bob,dc=example,dc=com", map[string][]string{
		"mail": {"carol@example.com"},
	})), status.Success)

	code := be.Rename(RenameRequest{
		DN:           "cn=bob,dc=example,dc=com",
		NewRDN:       "cn=robert",
		DeleteOldRDN: true,
	})
	assert.Equal(t, code, status.Success)

	_, code = be.GetEntry("cn=bob,dc=example,dc=com")
	assert.Equal(t, code, status.NoSuchObject)

	got, code := be.GetEntry("cn=robert,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
	assert.DeepEqual(t, got.Attrs["cn"], []string{"robert"})

	carol, code := be.GetEntry("cn=carol,cn=robert,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
	assert.DeepEqual(t, carol.Attrs["mail"], []string{"carol@example.com"})
}

func TestBind(t *testing.T) {
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	assert.NilError(t, err)
	e := newTestEntry("cn=alice,dc=example,dc=com", map[string][]string{
		PasswordAttr: {string(hash)},
	})
	assert.Equal(t, be.Add(e), status.Success)

	assert.Equal(t, be.Bind("cn=alice,dc=example,dc=com", []byte("s3cret")), status.Success)
	assert.Equal(t, be.Bind("cn=alice,dc=example,dc=com", []byte("wrong")), status.InvalidCredentials)
	assert.Equal(t, be.Bind("cn=nobody,dc=example,dc=com", []byte("x")), status.InvalidCredentials)
}

func TestSearchOneLevel(t *testing.T) {
	// spec.md §8 scenario 5.
	be := newTestBackend(t)
	assert.Equal(t, be.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=alice,dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=bob,dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, be.Add(newTestEntry("cn=carol,cn=bob,dc=example,dc=com", nil)), status.Success)

	buf := enum.NewBuffer()
	code := be.Search(SearchRequest{
		Base:        "dc=example,dc=com",
		Scope:       enum.ScopeOneLevel,
		ManageDSAIT: true,
	}, buf)
	assert.Equal(t, code, status.Success)
	assert.Equal(t, len(buf.Items), 2)
}

func TestToolExportImportRoundTrip(t *testing.T) {
	src := newTestBackend(t)
	assert.Equal(t, src.Add(newTestEntry("dc=example,dc=com", nil)), status.Success)
	assert.Equal(t, src.Add(newTestEntry("cn=alice,dc=example,dc=com", map[string][]string{
		"cn": {"alice"},
	})), status.Success)

	c := src.ToolOpen()
	assert.Equal(t, src.ToolFirst(c), status.Success)
	var dumped []*entry.Entry
	for {
		id, ok := src.ToolNext(c)
		if !ok {
			break
		}
		e, ok := src.ToolGet(c, id)
		assert.Assert(t, ok)
		dumped = append(dumped, e)
	}
	assert.Equal(t, len(dumped), 2)

	dstCfg := config.Config{Directory: filepath.Join(t.TempDir(), "dst"), Suffix: "dc=example,dc=com"}
	dst, err := New(dstCfg)
	assert.NilError(t, err)
	assert.NilError(t, dst.DBInit())
	assert.NilError(t, dst.DBOpen())
	for _, e := range dumped {
		assert.Equal(t, dst.ToolImport(e), status.Success)
	}

	got, code := dst.GetEntry("cn=alice,dc=example,dc=com")
	assert.Equal(t, code, status.Success)
	assert.DeepEqual(t, got.Attrs["cn"], []string{"alice"})
}
