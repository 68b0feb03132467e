package entry

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
)

// Encode serializes e to its on-disk textual form: "dn: <leaf-rdn>"
// followed by one "attr: value" (or "attr:: <base64>") line per
// value, blank-line terminated, per spec.md §6.
//
// The caller is responsible for truncating e.Name to its leaf RDN
// before calling Encode (spec.md §4.2: "the DN embedded inside the
// entry's serialized form is reduced to its leaf RDN only").
func Encode(e *Entry) []byte {
	var buf bytes.Buffer
	writeLine(&buf, "dn", e.Name)

	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range e.Attrs[k] {
			writeLine(&buf, k, v)
		}
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func writeLine(buf *bytes.Buffer, attr, value string) {
	if needsBase64(value) {
		fmt.Fprintf(buf, "%s:: %s\n", attr, base64.StdEncoding.EncodeToString([]byte(value)))
		return
	}
	fmt.Fprintf(buf, "%s: %s\n", attr, value)
}

func needsBase64(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == ' ' || s[0] == ':' || s[0] == '<' {
		return true
	}
	if strings.HasSuffix(s, " ") {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7F || c > 0x7E {
			return true
		}
	}
	return false
}

// Decode parses the on-disk textual form produced by Encode. The
// returned Entry's Name/NormName hold only the leaf RDN found in the
// file; reconstructing the full DN from the parent chain is the
// caller's job (spec.md §4.3), since the file has no notion of its
// own location in the tree.
func Decode(data []byte) (*Entry, error) {
	e := &Entry{Attrs: map[string][]string{}}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sawDN := false
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		attr, value, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		if !sawDN {
			if attr != "dn" {
				return nil, fmt.Errorf("entry: first line must be \"dn:\", got %q", line)
			}
			e.Name = value
			e.NormName = value
			sawDN = true
			continue
		}
		e.Attrs[attr] = append(e.Attrs[attr], value)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("entry: scan: %w", err)
	}
	if !sawDN {
		return nil, fmt.Errorf("entry: empty entry file")
	}
	return e, nil
}

func parseLine(line string) (attr, value string, err error) {
	if strings.HasPrefix(line, "#") {
		return "", "", fmt.Errorf("entry: comment lines not supported: %q", line)
	}
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", fmt.Errorf("entry: malformed line %q", line)
	}
	attr = line[:idx]
	if idx+1 < len(line) && line[idx+1] == ':' {
		b64 := strings.TrimPrefix(line[idx+2:], " ")
		raw, derr := base64.StdEncoding.DecodeString(b64)
		if derr != nil {
			return "", "", fmt.Errorf("entry: bad base64 on line %q: %w", line, derr)
		}
		return attr, string(raw), nil
	}
	value = strings.TrimPrefix(line[idx+1:], " ")
	return attr, value, nil
}
