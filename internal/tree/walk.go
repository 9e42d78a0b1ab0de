package tree

import "strings"

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func Walk(root *Node, fn func(n *Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
}

// Count counts all nodes in a tree.
func Count(root *Node) int {
	if root == nil {
		return 0
	}
	count := 1
	for _, child := range root.Children {
		count += Count(child)
	}
	return count
}

// Depth is the number of levels in the tree; a lone root has depth 1.
func Depth(root *Node) int {
	if root == nil {
		return 0
	}
	deepest := 0
	for _, child := range root.Children {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Equal reports whether two trees have the same labels and shape.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Label != b.Label || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Find resolves a path of names below root. Segments match a node's name
// with or without the folder prefix. An empty path returns root.
func Find(root *Node, segments ...string) *Node {
	node := root
	for _, seg := range segments {
		if node == nil {
			return nil
		}
		var next *Node
		for _, child := range node.Children {
			if child.Label == seg || child.Name() == seg {
				next = child
				break
			}
		}
		node = next
	}
	return node
}

// SplitPath splits a backslash or slash separated path into segments,
// dropping empty ones.
func SplitPath(path string) []string {
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return r == '\\' || r == '/'
	})
	return fields
}
