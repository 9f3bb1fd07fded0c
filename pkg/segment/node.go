// Package segment walks the visible text of a document-like tree and groups
// text nodes into logical blocks, keeping enough bookkeeping to map a byte
// offset in a block back to the text node it came from.
package segment

// Role classifies how a node participates in grouping.
type Role int

const (
	// RoleInline nodes never start a group on their own.
	RoleInline Role = iota
	// RoleBlock nodes are paragraph-like containers (p, div, li, td...).
	RoleBlock
	// RoleTextLayer nodes are rendered document page layers; they win over any block inside them.
	RoleTextLayer
	// RoleHidden nodes do not render text (script, style, noscript).
	RoleHidden
)

// Node is the minimal view of a document tree the segmenter needs.
// Implementations must be comparable: the same underlying node has to
// produce equal Node values, since nodes are used as group keys.
type Node interface {
	IsText() bool
	Text() string
	// Parent returns nil for the root.
	Parent() Node
	Children() []Node
	Role() Role
}
