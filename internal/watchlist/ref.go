package watchlist

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UserRef names a watch list target either by account id or by user name.
// Names are resolved (and normalised) by the store, once, at the boundary.
type UserRef struct {
	id     uint
	name   string
	byName bool
}

func ByID(id uint) UserRef { return UserRef{id: id} }

func ByName(name string) UserRef { return UserRef{name: name, byName: true} }

// ByNames converts a list of raw names
func ByNames(names []string) []UserRef {
	refs := make([]UserRef, len(names))
	for i, n := range names {
		refs[i] = ByName(n)
	}
	return refs
}

// IsName reports whether the reference still has to be resolved by name
func (r UserRef) IsName() bool { return r.byName }

func (r UserRef) String() string {
	if r.byName {
		return r.name
	}
	return strconv.FormatUint(uint64(r.id), 10)
}

// MarshalText renders the reference as it was given, so JSON callers see their own input
func (r UserRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

const (
	illegalNameChars = "#<>[]|{}@:"
	maxNameBytes     = 255
)

// NormalizeName maps user input onto the canonical account name: underscores
// become spaces, runs of blanks collapse, and the first letter is upper-cased.
// It returns false for names no account can carry.
func NormalizeName(raw string) (string, bool) {
	name := strings.Join(strings.Fields(strings.ReplaceAll(raw, "_", " ")), " ")
	if name == "" || len(name) > maxNameBytes || strings.ContainsAny(name, illegalNameChars) {
		return "", false
	}
	first, size := utf8.DecodeRuneInString(name)
	if first == utf8.RuneError {
		return "", false
	}
	return string(unicode.ToUpper(first)) + name[size:], true
}

// ParseRawList splits the raw edit form into trimmed, non-empty lines
func ParseRawList(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
