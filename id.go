package trellis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ElementKind identifies which table of the graph an ElementID belongs to.
type ElementKind uint8

const (
	KindNone ElementKind = iota // the zero ElementID
	KindNode
	KindHandle
	KindEdge
)

// String returns the id prefix for the kind.
func (k ElementKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindHandle:
		return "handle"
	case KindEdge:
		return "edge"
	default:
		return "none"
	}
}

// ErrInvalidID is returned by ParseID for strings without a known kind prefix.
var ErrInvalidID = errors.New("trellis: invalid element id")

// ElementID identifies a node, handle, or edge. The kind is parsed once when
// the id is created so lookups never re-inspect the string. The zero value
// means "no element".
type ElementID struct {
	kind ElementKind
	raw  string
}

// NewID returns a fresh random id of the given kind, e.g. "node-<uuid>".
func NewID(kind ElementKind) ElementID {
	if kind == KindNone {
		panic("trellis: cannot generate an id of kind none")
	}
	return ElementID{kind: kind, raw: kind.String() + "-" + uuid.NewString()}
}

// ParseID decodes the kind prefix of s. The remainder after the prefix is
// opaque and only required to be non-empty.
func ParseID(s string) (ElementID, error) {
	for _, k := range [...]ElementKind{KindNode, KindHandle, KindEdge} {
		prefix := k.String() + "-"
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return ElementID{kind: k, raw: s}, nil
		}
	}
	return ElementID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
}

// MustParseID is like ParseID but panics on error. Intended for tests and
// literal ids in examples.
func MustParseID(s string) ElementID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Kind returns the element kind encoded in the id.
func (id ElementID) Kind() ElementKind { return id.kind }

// IsZero reports whether id is the "no element" value.
func (id ElementID) IsZero() bool { return id.kind == KindNone }

// String returns the full id string, or "" for the zero id.
func (id ElementID) String() string { return id.raw }
