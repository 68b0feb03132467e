package dn

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestNormalizeFoldsAttributeType(t *testing.T) {
	got, err := Normalize("CN=alice,DC=example,DC=com")
	assert.NilError(t, err)
	assert.Equal(t, got, "cn=alice,dc=example,dc=com")
}

func TestHasSuffix(t *testing.T) {
	assert.Assert(t, HasSuffix("dc=example,dc=com", "dc=example,dc=com"))
	assert.Assert(t, HasSuffix("cn=alice,dc=example,dc=com", "dc=example,dc=com"))
	assert.Assert(t, !HasSuffix("dc=other,dc=com", "dc=example,dc=com"))
}

func TestLeafRDN(t *testing.T) {
	leaf, err := LeafRDN("cn=alice,dc=example,dc=com")
	assert.NilError(t, err)
	assert.Equal(t, leaf, "cn=alice")
}

func TestParentOf(t *testing.T) {
	parent, ok, err := ParentOf("cn=alice,dc=example,dc=com")
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, parent, "dc=example,dc=com")

	_, ok, err = ParentOf("dc=com")
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestEncodeScenario1(t *testing.T) {
	// spec.md §8 scenario 1.
	p, err := Encode("/var/data", "dc=example,dc=com", "cn=alice,dc=example,dc=com")
	assert.NilError(t, err)
	assert.Equal(t, p, "/var/data/dc=example,dc=com/cn=alice.ldif")
}

func TestEncodeScenario2Slash(t *testing.T) {
	// spec.md §8 scenario 2: RDN cn=a/b encodes with the escape char.
	p, err := Encode("/var/data", "dc=example,dc=com", `cn=a/b,dc=example,dc=com`)
	assert.NilError(t, err)
	assert.Equal(t, p, "/var/data/dc=example,dc=com/cn=a"+string(Escape)+"2Fb.ldif")
}

func TestEncodeInjective(t *testing.T) {
	a, err := Encode("/var/data", "dc=example,dc=com", "cn=alice,dc=example,dc=com")
	assert.NilError(t, err)
	b, err := Encode("/var/data", "dc=example,dc=com", "cn=bob,dc=example,dc=com")
	assert.NilError(t, err)
	assert.Assert(t, a != b)
}

func TestRDNAVAs(t *testing.T) {
	attrs, values, err := RDNAVAs("cn=alice")
	assert.NilError(t, err)
	assert.DeepEqual(t, attrs, []string{"cn"})
	assert.DeepEqual(t, values, []string{"alice"})
}
