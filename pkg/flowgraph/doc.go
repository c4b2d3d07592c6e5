// Package flowgraph turns the question graph of one block into a layered
// layout for diagramming and editing tools.
//
// Questions are placed level by level in breadth-first order starting from
// the questions nobody in the block points to. A question reached from several
// branches is placed once, at the earliest level that reaches it. Edges that
// point back to an earlier or equal level are reported as back edges and do
// not influence placement, so cyclic blocks are laid out without special care.
//
// Edges leaving the block (next_block, stop_flow, add_block and jumps into
// other blocks) end in terminal nodes, which are deduplicated per layout.
//
// The runtime never consults a Layout; it is a read-only view.
package flowgraph
