package router

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/flightdesk/agent/nodes/router"
)

func (r *Router) compileRouteGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, *nodex.GraphState], error) {
	graph := compose.NewGraph[nodex.GraphInput, *nodex.GraphState]()

	if err := graph.AddLambdaNode("adapt_input",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.AdaptInput(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node adapt_input: %w", err)
	}

	if err := graph.AddLambdaNode("classify",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Classify(ctx, in, r.classifier, r.threshold, r.log)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify: %w", err)
	}

	if err := graph.AddLambdaNode(string(nodex.BranchOutOfScope),
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondOutOfScope(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.BranchOutOfScope, err)
	}

	if err := graph.AddLambdaNode(string(nodex.BranchSmallTalk),
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RespondSmallTalk(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.BranchSmallTalk, err)
	}

	if err := graph.AddLambdaNode(string(nodex.BranchDispatch),
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Dispatch(ctx, in, r.agent, r.log)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.BranchDispatch, err)
	}

	branch := compose.NewGraphBranch(nodex.SelectBranch, map[string]bool{
		string(nodex.BranchOutOfScope): true,
		string(nodex.BranchSmallTalk):  true,
		string(nodex.BranchDispatch):   true,
	})
	if err := graph.AddBranch("classify", branch); err != nil {
		return nil, fmt.Errorf("add route branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "adapt_input"},
		{"adapt_input", "classify"},
		{string(nodex.BranchOutOfScope), compose.END},
		{string(nodex.BranchSmallTalk), compose.END},
		{string(nodex.BranchDispatch), compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.route"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}
