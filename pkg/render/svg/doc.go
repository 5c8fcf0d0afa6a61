// Package svg draws laid-out family trees as SVG node-link diagrams.
//
// # Output
//
// [Render] emits a standalone SVG document sized to the layout's canvas:
//
//   - one <line class="link"> per parent/child edge;
//   - one <g class="node"> per member, translated to its position, holding a
//     60x60 avatar clipped to a circle of radius 30 and a details block with
//     the name, "Relation: ..." (omitted for the displayed root) and
//     "Age: ..." (omitted when the age is absent or zero).
//
// # Interaction
//
// With [WithSelectHandler], every node group is wrapped in a link produced
// by the handler for that node's member and carries a data-member attribute
// with the member ID, so a click selects the member. [WithSelected] rings
// the currently selected member.
//
// # Redraw policy
//
// [Draw] clears a [Surface] and writes a complete new frame. There is no
// diffing against the previous frame; family-scale trees redraw in well under
// a millisecond.
package svg
