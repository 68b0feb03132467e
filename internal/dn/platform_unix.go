//go:build !windows

package dn

// Escape is the byte used to introduce a hex-escaped byte in an
// encoded path segment. On POSIX it is '\\' itself, so a literal '\'
// in the RDN bytes maps to itself and needs no further hex-escaping
// (it is already unambiguous: any OTHER unsafe byte following it is
// always spelled as ESCAPE + two hex digits, never as a bare byte).
const Escape = '\\'

// unsafe reports whether b must be hex-escaped when writing an RDN
// segment to the filesystem, per spec.md §3. '{' and '}' are never
// unsafe (ordered-RDN markers pass through unchanged); '\\' is handled
// separately by the caller since escaping it is the escape mechanism
// itself, not a target of it.
func unsafe(b byte) bool {
	switch b {
	case '/', ':', '.':
		return true
	default:
		return false
	}
}
