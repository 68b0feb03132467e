package entry

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := New("cn=alice", "cn=alice")
	e.AddValue("objectClass", "person")
	e.AddValue("cn", "alice")
	e.AddValue("sn", "Anderson")

	data := Encode(e)
	got, err := Decode(data)
	assert.NilError(t, err)
	assert.Equal(t, got.Name, "cn=alice")
	assert.DeepEqual(t, got.Attrs["objectClass"], []string{"person"})
	assert.DeepEqual(t, got.Attrs["sn"], []string{"Anderson"})
}

func TestEncodeBase64ForLeadingSpace(t *testing.T) {
	e := New("cn=alice", "cn=alice")
	e.AddValue("description", " leads with a space")

	data := Encode(e)
	got, err := Decode(data)
	assert.NilError(t, err)
	assert.DeepEqual(t, got.Attrs["description"], []string{" leads with a space"})
}

func TestDecodeRequiresDNFirst(t *testing.T) {
	_, err := Decode([]byte("cn: alice\n\n"))
	assert.ErrorContains(t, err, "first line must be")
}

func TestDecodeRejectsEmpty(t *testing.T) {
	_, err := Decode([]byte(""))
	assert.ErrorContains(t, err, "empty entry file")
}

func TestEntryHasAddRemoveValue(t *testing.T) {
	e := New("cn=alice", "cn=alice")
	assert.Assert(t, !e.HasValue("mail", "a@example.com"))
	e.AddValue("mail", "a@example.com")
	assert.Assert(t, e.HasValue("mail", "a@example.com"))
	assert.Assert(t, e.RemoveValue("mail", "a@example.com"))
	assert.Assert(t, !e.HasValue("mail", "a@example.com"))
	assert.Assert(t, !e.RemoveValue("mail", "a@example.com"))
}

func TestCloneIsDeep(t *testing.T) {
	e := New("cn=alice", "cn=alice")
	e.AddValue("mail", "a@example.com")
	c := e.Clone()
	c.AddValue("mail", "b@example.com")
	assert.Equal(t, len(e.Attrs["mail"]), 1)
	assert.Equal(t, len(c.Attrs["mail"]), 2)
}
