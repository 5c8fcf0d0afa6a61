// Package viewer holds the interactive state of a family tree view.
//
// A [State] owns the loaded tree, the active (displayed) root, the selected
// member and the drawing surface. It starts Empty and becomes Loaded on the
// first successful load; a failed load never replaces the current tree.
//
// The active root can only be switched to one of the tree's root options
// (the loaded root and its direct children). Switching redraws the frame
// when the root actually changes; a selection outside the new subtree is
// cleared. Clicking a node selects its member.
//
// All methods are safe for concurrent use. Uploads complete in any order and
// the last one to finish wins.
package viewer
