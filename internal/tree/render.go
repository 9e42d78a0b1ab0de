package tree

import (
	"bufio"
	"encoding/json"
	"io"
)

// Render writes the tree as indented ASCII art, one node per line.
func Render(w io.Writer, root *Node) error {
	if root == nil {
		return nil
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(root.Label)
	bw.WriteByte('\n')
	renderChildren(bw, root, "")
	return bw.Flush()
}

func renderChildren(bw *bufio.Writer, n *Node, indent string) {
	for i, child := range n.Children {
		last := i == len(n.Children)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		bw.WriteString(indent)
		bw.WriteString(branch)
		bw.WriteString(child.Label)
		bw.WriteByte('\n')
		renderChildren(bw, child, indent+next)
	}
}

// WriteJSON encodes the tree as indented JSON.
func WriteJSON(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root)
}
