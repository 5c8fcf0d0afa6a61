package family

import (
	"strconv"
	"strings"
)

// DefaultImage is the avatar shown for members without an image.
const DefaultImage = "/images/default.jpg"

// Member is one person in a family tree.
type Member struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	Relationship string    `json:"relationship,omitempty"`
	Age          *float64  `json:"age,omitempty"`
	Children     []*Member `json:"children"`

	// Parent is nil for the loaded root.
	Parent *Member `json:"-"`

	size int // number of members in this subtree, including itself
}

// IsRoot reports whether m is the root of the loaded tree.
func (m *Member) IsRoot() bool { return m.Parent == nil }

// Size returns the number of members in the subtree rooted at m.
func (m *Member) Size() int { return m.size }

// Contains reports whether other is m or one of its descendants.
func (m *Member) Contains(other *Member) bool {
	if m == nil || other == nil {
		return false
	}
	return other.ID >= m.ID && other.ID < m.ID+m.size
}

// AvatarURL returns the member's image, or def when none is set or the
// image names a scheme that could run script in an SVG href.
func (m *Member) AvatarURL(def string) string {
	if m.Image == "" || !safeImage(m.Image) {
		return def
	}
	return m.Image
}

// safeImage reports whether an image reference is relative or uses an
// http(s) or data:image scheme.
func safeImage(ref string) bool {
	ref = strings.TrimSpace(ref)
	end := strings.IndexAny(ref, "/?#")
	if end < 0 {
		end = len(ref)
	}
	colon := strings.IndexByte(ref[:end], ':')
	if colon < 0 {
		return true
	}
	switch strings.ToLower(ref[:colon]) {
	case "http", "https":
		return true
	case "data":
		return strings.HasPrefix(strings.ToLower(ref[colon+1:]), "image/")
	}
	return false
}

// HasAge reports whether the age line should be displayed.
// An age of zero counts as absent unless showZero is set.
func (m *Member) HasAge(showZero bool) bool {
	if m.Age == nil {
		return false
	}
	return *m.Age != 0 || showZero
}

// AgeText formats the age the way it is displayed ("10", "2.5").
func (m *Member) AgeText() string {
	if m.Age == nil {
		return ""
	}
	return strconv.FormatFloat(*m.Age, 'f', -1, 64)
}

// Walk visits m and its descendants in pre-order. Returning false from fn
// skips the children of the visited member.
func (m *Member) Walk(fn func(*Member) bool) {
	if !fn(m) {
		return
	}
	for _, c := range m.Children {
		c.Walk(fn)
	}
}

// Depth returns the distance from the loaded root.
func (m *Member) Depth() int {
	d := 0
	for p := m.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}
