// Package layout assigns canvas coordinates to the members of a family tree.
//
// # Algorithm
//
// [Compute] implements the tidy tree drawing of Reingold and Tilford in the
// linear-time formulation of Buchheim, Jünger and Leipert: subtrees are laid
// out bottom-up, pushed apart just enough to keep a minimum separation
// between neighbouring contours (1 unit between siblings, 2 between cousins),
// and parents are centred over their children. The result is then scaled to
// fill the drawable rectangle of the [Canvas]: the outermost nodes sit half a
// separation inside its left and right edges, the root sits on its top edge
// and the deepest level on its bottom edge.
//
// The layout is top-down: X grows to the right, Y grows with depth.
//
// # Determinism
//
// The algorithm has no randomness and visits children in document order, so
// the same root and canvas always yield identical coordinates. Redrawing on
// every state change therefore never makes the diagram jump.
//
// # Ownership
//
// A [Result] is a fresh structure per call. It references the input members
// but never mutates them; callers discard it on the next draw.
package layout
