package family

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/famtree/pkg/errors"
)

// MaxDocumentSize bounds how much of an upload is read.
const MaxDocumentSize = 8 << 20

// Tree is a loaded family tree.
type Tree struct {
	root    *Member
	members []*Member // indexed by ID
	options []*Member
	hash    string
}

// Root returns the loaded root member.
func (t *Tree) Root() *Member { return t.root }

// Len returns the number of members in the tree.
func (t *Tree) Len() int { return len(t.members) }

// Hash returns the SHA-256 of the source document as 64 hex characters.
func (t *Tree) Hash() string { return t.hash }

// Member looks up a member by ID.
func (t *Tree) Member(id int) (*Member, bool) {
	if id < 0 || id >= len(t.members) {
		return nil, false
	}
	return t.members[id], true
}

// Members returns all members in pre-order.
func (t *Tree) Members() []*Member {
	return append([]*Member(nil), t.members...)
}

// RootOptions returns the members eligible as display root: the loaded root
// followed by its direct children, in document order.
func (t *Tree) RootOptions() []*Member {
	return append([]*Member(nil), t.options...)
}

// IsRootOption reports whether id names one of the root options.
func (t *Tree) IsRootOption(id int) bool {
	for _, m := range t.options {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Load parses a tree document. It fails with a PARSE_ERROR when the text is
// not a JSON object or when a member has no string name. Other fields are
// decoded leniently.
func Load(raw []byte) (*Tree, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeParse, "document is empty")
	}

	var doc *rawMember
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "decode family tree")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeParse, "document is null")
	}

	root, err := doc.build("root")
	if err != nil {
		return nil, err
	}

	t := &Tree{root: root}
	t.index(root, nil)
	t.options = append([]*Member{root}, root.Children...)

	sum := sha256.Sum256(trimmed)
	t.hash = hex.EncodeToString(sum[:])
	return t, nil
}

// LoadReader reads at most MaxDocumentSize bytes from r and parses them.
func LoadReader(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read family tree")
	}
	if len(data) > MaxDocumentSize {
		return nil, errors.New(errors.ErrCodeParse, "document exceeds %d bytes", MaxDocumentSize)
	}
	return Load(data)
}

// index assigns pre-order IDs, parent pointers and subtree sizes.
func (t *Tree) index(m, parent *Member) int {
	m.ID = len(t.members)
	m.Parent = parent
	t.members = append(t.members, m)

	size := 1
	for _, c := range m.Children {
		size += t.index(c, m)
	}
	m.size = size
	return size
}

// rawMember mirrors the document format before validation.
type rawMember struct {
	Name         *string      `json:"name"`
	Image        flexText     `json:"image"`
	Relationship flexText     `json:"relationship"`
	Age          flexAge      `json:"age"`
	Children     []*rawMember `json:"children"`
}

func (r *rawMember) build(path string) (*Member, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeParse, "%s: member is null", path)
	}
	if r.Name == nil {
		return nil, errors.New(errors.ErrCodeParse, "%s: missing required field \"name\"", path)
	}

	m := &Member{
		Name:         *r.Name,
		Image:        string(r.Image),
		Relationship: string(r.Relationship),
		Age:          r.Age.value,
		Children:     make([]*Member, 0, len(r.Children)),
	}
	for i, rc := range r.Children {
		c, err := rc.build(fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		m.Children = append(m.Children, c)
	}
	return m, nil
}

// flexAge accepts a JSON number, a numeric string or null.
type flexAge struct {
	value *float64
}

func (a *flexAge) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		a.value = nil
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
		if s == "" {
			a.value = nil
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("age must be a number, got %s", data)
	}
	a.value = &v
	return nil
}

// flexText accepts a string, a number, a boolean or null. Scalars other
// than strings keep their JSON text.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*t = ""
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = flexText(v)
	case strings.HasPrefix(s, "{"), strings.HasPrefix(s, "["):
		return fmt.Errorf("expected text, got %s", s)
	default:
		*t = flexText(s)
	}
	return nil
}
