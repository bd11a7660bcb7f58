package routernode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/flightdesk/agent/contract"
)

type Branch string

const (
	BranchOutOfScope Branch = "out_of_scope"
	BranchSmallTalk  Branch = "small_talk"
	BranchDispatch   Branch = "dispatch"
)

// DecideBranch checks out-of-scope before small-talk even though the policy
// already makes them exclusive.
func DecideBranch(c contractx.PolicyContext) Branch {
	switch {
	case c.OutOfScope:
		return BranchOutOfScope
	case c.SmallTalk:
		return BranchSmallTalk
	default:
		return BranchDispatch
	}
}

// SelectBranch is the graph branch condition. It returns the node name.
func SelectBranch(_ context.Context, in *GraphState) (string, error) {
	if in == nil || in.Context == nil {
		return "", fmt.Errorf("%w: policy context is missing", contractx.ErrValidation)
	}
	in.Branch = DecideBranch(*in.Context)
	return string(in.Branch), nil
}
