package ics23

import (
	"bytes"
	"fmt"
)

// IsLeftMost reports whether every step of path is the left-most branch of
// its node, either by padding or because all branches to its left are
// empty.
func IsLeftMost(spec *InnerSpec, path []*InnerOp) (bool, error) {
	minPrefix, maxPrefix, suffix, err := getPadding(spec, 0)
	if err != nil {
		return false, err
	}

	for _, step := range path {
		if hasPadding(step, minPrefix, maxPrefix, suffix) {
			continue
		}
		empty, err := leftBranchesAreEmpty(spec, step)
		if err != nil {
			return false, err
		}
		if !empty {
			return false, nil
		}
	}
	return true, nil
}

// IsRightMost reports whether every step of path is the right-most branch
// of its node, either by padding or because all branches to its right are
// empty.
func IsRightMost(spec *InnerSpec, path []*InnerOp) (bool, error) {
	last := int32(len(spec.ChildOrder) - 1)
	minPrefix, maxPrefix, suffix, err := getPadding(spec, last)
	if err != nil {
		return false, err
	}

	for _, step := range path {
		if hasPadding(step, minPrefix, maxPrefix, suffix) {
			continue
		}
		empty, err := rightBranchesAreEmpty(spec, step)
		if err != nil {
			return false, err
		}
		if !empty {
			return false, nil
		}
	}
	return true, nil
}

// IsLeftNeighbor reports whether left and right are paths to two leaves
// directly next to each other. Both paths are ordered from the leaf up.
//
// Identical steps near the root are shared ancestors. The first pair of
// steps that differ must be adjacent branches of the same node, everything
// below it on the left path must be right-most and everything below it on
// the right path must be left-most.
func IsLeftNeighbor(spec *InnerSpec, left []*InnerOp, right []*InnerOp) (bool, error) {
	leftIdx, rightIdx := len(left)-1, len(right)-1
	for leftIdx >= 0 && rightIdx >= 0 &&
		bytes.Equal(left[leftIdx].Prefix, right[rightIdx].Prefix) &&
		bytes.Equal(left[leftIdx].Suffix, right[rightIdx].Suffix) {
		leftIdx--
		rightIdx--
	}
	if leftIdx < 0 || rightIdx < 0 {
		return false, nil
	}

	ok, err := isLeftStep(spec, left[leftIdx], right[rightIdx])
	if err != nil || !ok {
		return false, err
	}

	ok, err = IsRightMost(spec, left[:leftIdx])
	if err != nil || !ok {
		return false, err
	}

	return IsLeftMost(spec, right[:rightIdx])
}

// isLeftStep reports whether the two steps are at adjacent branches of the
// same node, left directly before right.
func isLeftStep(spec *InnerSpec, left *InnerOp, right *InnerOp) (bool, error) {
	leftIdx, err := orderFromPadding(spec, left)
	if err != nil {
		return false, err
	}
	rightIdx, err := orderFromPadding(spec, right)
	if err != nil {
		return false, err
	}

	return rightIdx == leftIdx+1, nil
}

// leftBranchesAreEmpty reports whether all branches to the left of op's
// branch hold the spec's EmptyChild.
func leftBranchesAreEmpty(spec *InnerSpec, op *InnerOp) (bool, error) {
	idx, err := orderFromPadding(spec, op)
	if err != nil {
		return false, err
	}

	leftBranches := int(idx)
	if leftBranches == 0 {
		return false, nil
	}

	childSize := int(spec.ChildSize)
	actualPrefix := len(op.Prefix) - leftBranches*childSize
	if actualPrefix < 0 {
		return false, nil
	}

	for i := 0; i < leftBranches; i++ {
		pos, err := getPosition(spec.ChildOrder, int32(i))
		if err != nil {
			return false, err
		}
		from := actualPrefix + pos*childSize
		if from+childSize > len(op.Prefix) {
			return false, nil
		}
		if !bytes.Equal(spec.EmptyChild, op.Prefix[from:from+childSize]) {
			return false, nil
		}
	}
	return true, nil
}

// rightBranchesAreEmpty reports whether all branches to the right of op's
// branch hold the spec's EmptyChild.
func rightBranchesAreEmpty(spec *InnerSpec, op *InnerOp) (bool, error) {
	idx, err := orderFromPadding(spec, op)
	if err != nil {
		return false, err
	}

	rightBranches := len(spec.ChildOrder) - 1 - int(idx)
	if rightBranches == 0 {
		return false, nil
	}

	childSize := int(spec.ChildSize)
	if len(op.Suffix) != rightBranches*childSize {
		return false, nil
	}

	for i := 0; i < rightBranches; i++ {
		pos, err := getPosition(spec.ChildOrder, int32(i))
		if err != nil {
			return false, err
		}
		from := pos * childSize
		if from+childSize > len(op.Suffix) {
			return false, nil
		}
		if !bytes.Equal(spec.EmptyChild, op.Suffix[from:from+childSize]) {
			return false, nil
		}
	}
	return true, nil
}

// orderFromPadding returns the branch index whose padding matches op.
func orderFromPadding(spec *InnerSpec, op *InnerOp) (int32, error) {
	maxBranch := int32(len(spec.ChildOrder))
	for branch := int32(0); branch < maxBranch; branch++ {
		minPrefix, maxPrefix, suffix, err := getPadding(spec, branch)
		if err != nil {
			return 0, err
		}
		if hasPadding(op, minPrefix, maxPrefix, suffix) {
			return branch, nil
		}
	}
	return 0, fmt.Errorf("cannot find any valid spacing for this node (prefix %d bytes, suffix %d bytes)",
		len(op.Prefix), len(op.Suffix))
}

// getPadding determines the prefix and suffix lengths of an inner op that
// hashes its child at the given branch.
func getPadding(spec *InnerSpec, branch int32) (minPrefix, maxPrefix, suffix int, err error) {
	idx, err := getPosition(spec.ChildOrder, branch)
	if err != nil {
		return 0, 0, 0, err
	}

	childSize := int(spec.ChildSize)
	prefix := idx * childSize
	minPrefix = prefix + int(spec.MinPrefixLength)
	maxPrefix = prefix + int(spec.MaxPrefixLength)
	suffix = (len(spec.ChildOrder) - 1 - idx) * childSize
	return minPrefix, maxPrefix, suffix, nil
}

// getPosition returns the position of branch within order.
func getPosition(order []int32, branch int32) (int, error) {
	if branch < 0 || int(branch) >= len(order) {
		return 0, InvalidBranchError{Branch: branch, ChildOrder: order}
	}
	for i, item := range order {
		if branch == item {
			return i, nil
		}
	}
	return 0, InvalidBranchError{Branch: branch, ChildOrder: order}
}

func hasPadding(op *InnerOp, minPrefix, maxPrefix, suffix int) bool {
	if len(op.Prefix) < minPrefix || len(op.Prefix) > maxPrefix {
		return false
	}
	return len(op.Suffix) == suffix
}
