package intent

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// compileClassifierGraph stops at the cleaned model message. JSON parsing
// happens outside the graph so parse failures stay distinguishable from
// transport failures. The system prompt is passed through verbatim, braces
// included.
func compileClassifierGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[string, *schema.Message], error) {
	graph := compose.NewGraph[string, *schema.Message]()

	buildMessages := func(_ context.Context, text string) ([]*schema.Message, error) {
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(text),
		}, nil
	}

	if err := graph.AddLambdaNode("messages", compose.InvokableLambda(buildMessages)); err != nil {
		return nil, fmt.Errorf("add classifier messages node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add classifier model node: %w", err)
	}
	if err := graph.AddLambdaNode("strip_fence", compose.InvokableLambda(stripCodeFence)); err != nil {
		return nil, fmt.Errorf("add classifier fence node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "messages"},
		{"messages", "model"},
		{"model", "strip_fence"},
		{"strip_fence", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add classifier edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("intent.classifier_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile classifier graph: %w", err)
	}
	return runner, nil
}
