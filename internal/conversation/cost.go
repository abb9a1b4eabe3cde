package conversation

import "github.com/qcoder/qcoder/internal/core"

// CostModel maps a message to a non-negative budget cost. Implementations
// must be monotonic in content length; Trim relies on nothing else.
type CostModel interface {
	Cost(msg core.Message) int
}

const defaultCharsPerToken = 4

// CharCost estimates cost from content length, rounding up at roughly four
// characters per token. It never fails, which makes it the fallback of last
// resort for every other model.
type CharCost struct {
	CharsPerToken int
}

func (c CharCost) Cost(msg core.Message) int {
	k := c.CharsPerToken
	if k <= 0 {
		k = defaultCharsPerToken
	}

	if len(msg.Content) == 0 {
		return 0
	}

	return (len(msg.Content) + k - 1) / k
}

// TokenCounter counts tokens for a piece of text, typically by calling a
// tokenizer endpoint. It may fail.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// TokenizerCost asks a TokenCounter for the real token count and falls back
// to a character estimate whenever the counter fails, so callers of Trim
// never observe a cost failure.
type TokenizerCost struct {
	Counter  TokenCounter
	Fallback CharCost
}

func (t TokenizerCost) Cost(msg core.Message) int {
	if t.Counter != nil {
		if n, err := t.Counter.CountTokens(msg.Content); err == nil && n >= 0 {
			return n
		}
	}

	return t.Fallback.Cost(msg)
}
