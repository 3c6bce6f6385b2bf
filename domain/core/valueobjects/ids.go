package valueobjects

import (
	"math"
	"strconv"
	"strings"
)

// Id prefixes of the session-scoped numeric id scheme
const (
	NodeIDPrefix = "n"
	EdgeIDPrefix = "e"
)

// NodeID identifies a node within a session
type NodeID string

// String returns the string representation
func (id NodeID) String() string {
	return string(id)
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id == other
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id == ""
}

// EdgeID identifies an edge within a session
type EdgeID string

// String returns the string representation
func (id EdgeID) String() string {
	return string(id)
}

// Equals checks if two EdgeIDs are equal
func (id EdgeID) Equals(other EdgeID) bool {
	return id == other
}

// IsZero checks if the EdgeID is the zero value
func (id EdgeID) IsZero() bool {
	return id == ""
}

// MaxIDSuffix is the largest numeric suffix a stored id may carry
const MaxIDSuffix = math.MaxInt32

// NextNodeID returns n<k+1> where k is the largest numeric suffix among
// the given ids. Ids that do not follow the n<k> shape are ignored. Once
// k reaches MaxIDSuffix the lowest free suffix is used instead.
func NextNodeID(existing []NodeID) NodeID {
	ids := make([]string, len(existing))
	for i, id := range existing {
		ids[i] = string(id)
	}
	return NodeID(NodeIDPrefix + strconv.Itoa(nextSuffix(ids, NodeIDPrefix)))
}

// NextEdgeID is NextNodeID for e<k> ids
func NextEdgeID(existing []EdgeID) EdgeID {
	ids := make([]string, len(existing))
	for i, id := range existing {
		ids[i] = string(id)
	}
	return EdgeID(EdgeIDPrefix + strconv.Itoa(nextSuffix(ids, EdgeIDPrefix)))
}

// SuffixInRange reports whether id, when it has the numeric shape of
// prefix, carries a suffix no larger than MaxIDSuffix. Ids of any other
// shape are in range.
func SuffixInRange(id, prefix string) bool {
	k, ok := numericSuffix(id, prefix)
	if !ok {
		return !hasDigitSuffix(id, prefix)
	}
	return k <= MaxIDSuffix
}

func nextSuffix(ids []string, prefix string) int {
	max := 0
	used := make(map[int]bool, len(ids))
	for _, id := range ids {
		if k, ok := numericSuffix(id, prefix); ok {
			used[k] = true
			if k > max {
				max = k
			}
		}
	}
	if max < MaxIDSuffix {
		return max + 1
	}
	k := 1
	for used[k] {
		k++
	}
	return k
}

func hasDigitSuffix(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	digits := id[len(prefix):]
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func numericSuffix(id, prefix string) (int, bool) {
	if !hasDigitSuffix(id, prefix) {
		return 0, false
	}
	k, err := strconv.Atoi(id[len(prefix):])
	if err != nil {
		return 0, false
	}
	return k, true
}
