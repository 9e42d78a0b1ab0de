// Package tree converts device folder trees into detached display trees.
package tree

import (
	"strings"

	"github.com/gajzzs/devtree/internal/device"
)

// FolderPrefix is prepended to folder labels.
const FolderPrefix = `\`

// Node is a display node: a label and ordered children.
type Node struct {
	Label    string  `json:"label"`
	Folder   bool    `json:"folder,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Build copies the tree rooted at root into display nodes, depth first,
// keeping child order. The result shares nothing with root.
func Build(root *device.Folder) *Node {
	if root == nil {
		return nil
	}
	return build(root)
}

func build(obj device.Object) *Node {
	switch o := obj.(type) {
	case *device.Folder:
		node := &Node{Label: FolderPrefix + o.Name, Folder: true}
		if len(o.Children) > 0 {
			node.Children = make([]*Node, 0, len(o.Children))
		}
		for _, child := range o.Children {
			node.Children = append(node.Children, build(child))
		}
		return node
	case *device.File:
		return &Node{Label: o.Name}
	default:
		return &Node{Label: obj.ObjectName()}
	}
}

// Name returns the label without the folder prefix.
func (n *Node) Name() string {
	if n.Folder {
		return strings.TrimPrefix(n.Label, FolderPrefix)
	}
	return n.Label
}
