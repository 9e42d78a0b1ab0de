package tree

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a hex blake2b-256 hash of the tree's labels and shape.
// Structurally equal trees always hash the same.
func Digest(root *Node) string {
	h, _ := blake2b.New256(nil)
	var buf [binary.MaxVarintLen64]byte
	Walk(root, func(n *Node, depth int) bool {
		// label length, label, child count
		h.Write(buf[:binary.PutUvarint(buf[:], uint64(len(n.Label)))])
		h.Write([]byte(n.Label))
		h.Write(buf[:binary.PutUvarint(buf[:], uint64(len(n.Children)))])
		return true
	})
	return hex.EncodeToString(h.Sum(nil))
}
