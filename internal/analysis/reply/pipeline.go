package reply

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/zhouzirui/care-companion/backend/internal/analysis/emotion"
)

// Turn 是一条用户输入经过流水线后的结果。
type Turn struct {
	Input       string        `json:"input"`
	UserEmotion emotion.Label `json:"userEmotion"`
	Reply       Reply         `json:"reply"`
}

type classified struct {
	text  string
	label emotion.Label
}

// Pipeline 以编译后的 eino chain 执行情绪分类与回复选择。
type Pipeline struct {
	runnable compose.Runnable[string, Turn]
}

// NewPipeline 编译 classify -> respond 链。
func NewPipeline(ctx context.Context) (*Pipeline, error) {
	chain := compose.NewChain[string, Turn]()
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, text string) (classified, error) {
		return classified{text: text, label: emotion.Classify(text)}, nil
	}))
	chain.AppendLambda(compose.InvokableLambda(func(_ context.Context, in classified) (Turn, error) {
		return Turn{
			Input:       in.text,
			UserEmotion: in.label,
			Reply:       Respond(in.text, in.label),
		}, nil
	}))

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}
	return &Pipeline{runnable: runnable}, nil
}

// Run 对文本分类并选出回复。链上节点不会失败，
// 返回的错误只可能来自运行时（例如 context 已取消）。
func (p *Pipeline) Run(ctx context.Context, text string) (Turn, error) {
	if p == nil || p.runnable == nil {
		return Evaluate(text), nil
	}
	turn, err := p.runnable.Invoke(ctx, text)
	if err != nil {
		return Turn{}, fmt.Errorf("reply chain invoke failed: %w", err)
	}
	return turn, nil
}

// Evaluate 是不经过 chain 的直接版本。
func Evaluate(text string) Turn {
	label := emotion.Classify(text)
	return Turn{Input: text, UserEmotion: label, Reply: Respond(text, label)}
}
