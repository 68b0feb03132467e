// Package dn implements the bijective, collision-free, filesystem-safe
// encoding from normalized Distinguished Names to filesystem paths
// described in spec.md §3–§4.1, plus the DN normalization hook (spec.md
// declares DN parsing/normalization an external collaborator; this
// package is its concrete implementation, built on go-ldap's RFC 4514
// parser).
package dn

import (
	"fmt"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	ldap "github.com/go-ldap/ldap/v3"
)

// Normalize parses raw as an RFC 4514 distinguished name and returns
// its canonical form: attribute type names folded to lower case,
// values left byte-for-byte as parsed (unescaped), re-serialized with
// RFC 4514 escaping. Two DNs that denote the same entry normalize to
// the same string.
func Normalize(raw string) (string, error) {
	parsed, err := ldap.ParseDN(raw)
	if err != nil {
		return "", fmt.Errorf("dn: parse %q: %w", raw, err)
	}
	for _, rdn := range parsed.RDNs {
		for _, ava := range rdn.Attributes {
			ava.Type = strings.ToLower(ava.Type)
		}
	}
	return parsed.String(), nil
}

// LeafRDN returns the textual, RFC 4514-escaped form of normDN's
// leaf (first) RDN alone, for embedding in an entry's serialized form
// per spec.md §4.2 ("the file stores only the leaf RDN").
func LeafRDN(normDN string) (string, error) {
	parsed, err := ldap.ParseDN(normDN)
	if err != nil {
		return "", fmt.Errorf("dn: parse %q: %w", normDN, err)
	}
	if len(parsed.RDNs) == 0 {
		return "", fmt.Errorf("dn: empty DN")
	}
	leaf := &ldap.DN{RDNs: parsed.RDNs[:1]}
	return leaf.String(), nil
}

// ParentOf returns the DN with its leaf (first) RDN removed. It
// returns ok=false if normDN has only one RDN (no parent within this
// DN's own text — callers compare against the configured suffix
// separately to decide whether a DN denotes the backend's root).
func ParentOf(normDN string) (parent string, ok bool, err error) {
	parsed, err := ldap.ParseDN(normDN)
	if err != nil {
		return "", false, fmt.Errorf("dn: parse %q: %w", normDN, err)
	}
	if len(parsed.RDNs) <= 1 {
		return "", false, nil
	}
	rest := &ldap.DN{RDNs: parsed.RDNs[1:]}
	return rest.String(), true, nil
}

// RDNAVAs parses rdnOrDN and returns the attribute type/value pairs of
// its leaf (first) RDN, lower-casing attribute types the same way
// Normalize does. Used by rename to replace naming-attribute values
// when the RDN changes.
func RDNAVAs(rdnOrDN string) (attrs []string, values []string, err error) {
	parsed, err := ldap.ParseDN(rdnOrDN)
	if err != nil {
		return nil, nil, fmt.Errorf("dn: parse %q: %w", rdnOrDN, err)
	}
	if len(parsed.RDNs) == 0 {
		return nil, nil, fmt.Errorf("dn: empty DN")
	}
	for _, ava := range parsed.RDNs[0].Attributes {
		attrs = append(attrs, strings.ToLower(ava.Type))
		values = append(values, ava.Value)
	}
	return attrs, values, nil
}

// HasSuffix reports whether full is suffix or is suffixed by it, per
// spec.md §3's definition of suffix ("A = C,B for some, possibly
// empty, prefix C"). Both arguments must already be normalized.
func HasSuffix(full, suffix string) bool {
	if full == suffix {
		return true
	}
	return strings.HasSuffix(full, ","+suffix)
}

// rawRDNBytes reconstructs the raw (unescaped) bytes of one RDN:
// "type=value" for a single-valued RDN, "type1=value1+type2=value2"
// for a multi-valued one, using the literal attribute value bytes
// go-ldap already unescaped during parsing.
func rawRDNBytes(rdn *ldap.RelativeDN) []byte {
	var b strings.Builder
	for i, ava := range rdn.Attributes {
		if i > 0 {
			b.WriteByte('+')
		}
		b.WriteString(ava.Type)
		b.WriteByte('=')
		b.WriteString(ava.Value)
	}
	return []byte(b.String())
}

// rawDNBytes reconstructs the raw bytes of a whole (possibly
// multi-RDN) DN, comma-joined, for use as the opaque suffix segment.
func rawDNBytes(d *ldap.DN) []byte {
	var b strings.Builder
	for i, rdn := range d.RDNs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(rawRDNBytes(rdn))
	}
	return []byte(b.String())
}

// Encode maps a normalized DN known to be suffixed by suffix to its
// absolute entry-file path under baseDir, per spec.md §4.1.
//
// Components are emitted from the outermost (suffix) component to the
// innermost (leaf): <base_dir>/<encoded_suffix>/<child>/…/<leaf>.ldif.
// The suffix is always a single opaque segment, even when it itself
// has several RDNs.
func Encode(baseDir, suffix, fullDN string) (string, error) {
	full, err := ldap.ParseDN(fullDN)
	if err != nil {
		return "", fmt.Errorf("dn: parse %q: %w", fullDN, err)
	}
	suf, err := ldap.ParseDN(suffix)
	if err != nil {
		return "", fmt.Errorf("dn: parse suffix %q: %w", suffix, err)
	}
	if len(full.RDNs) < len(suf.RDNs) {
		return "", fmt.Errorf("dn: %q is not suffixed by %q", fullDN, suffix)
	}
	localCount := len(full.RDNs) - len(suf.RDNs)
	local := full.RDNs[:localCount]

	segs := make([]string, 0, localCount+1)
	segs = append(segs, EncodeSegmentBytes(rawDNBytes(suf)))
	// local is leaf-first; outer-to-inner is its reverse.
	for i := len(local) - 1; i >= 0; i-- {
		segs = append(segs, EncodeSegmentBytes(rawRDNBytes(local[i])))
	}

	rel := strings.Join(segs, "/")
	joined, err := securejoin.SecureJoin(baseDir, rel)
	if err != nil {
		return "", fmt.Errorf("dn: encode %q: %w", fullDN, err)
	}
	return joined + EntrySuffix, nil
}
