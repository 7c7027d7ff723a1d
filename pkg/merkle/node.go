// Package merkle fingerprints conversations as hash chains. Each turn's hash
// covers the turn and the hash of the turn before it, so a history is
// identified by its head hash alone and identical histories always share it.
// Nothing is stored: callers resend their history and the chain is rebuilt.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/relay/pkg/llm"
)

// Node is one turn in a hash chain.
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous turn. Empty for the first turn.
	ParentHash string `json:"parent_hash,omitempty"`

	Turn llm.ConversationTurn `json:"turn"`
}

type hashInput struct {
	Parent string               `json:"parent,omitempty"`
	Turn   llm.ConversationTurn `json:"turn"`
}

// NewNode links turn to parent, which may be nil for the first turn.
func NewNode(turn llm.ConversationTurn, parent *Node) *Node {
	n := &Node{Turn: turn}
	if parent != nil {
		n.ParentHash = parent.Hash
	}

	data, err := json.Marshal(hashInput{Parent: n.ParentHash, Turn: n.Turn})
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	sum := sha256.Sum256(data)
	n.Hash = hex.EncodeToString(sum[:])
	return n
}

// Chain links turns oldest first and returns the nodes in the same order.
func Chain(turns []llm.ConversationTurn) []*Node {
	nodes := make([]*Node, 0, len(turns))

	var parent *Node
	for _, turn := range turns {
		parent = NewNode(turn, parent)
		nodes = append(nodes, parent)
	}
	return nodes
}

// Head returns the last node of the chain built from turns, or nil when
// turns is empty.
func Head(turns []llm.ConversationTurn) *Node {
	nodes := Chain(turns)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}
