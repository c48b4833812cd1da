package assistantapi

// MessageInput is one turn of the conversation sent to the chat feature.
type MessageInput struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

type ChatInput struct {
	Messages []MessageInput `json:"messages" binding:"required,min=1,dive"`
}

// QueryInput feeds the single-shot features (drug lookup, prescription,
// diagnosis, care plan).
type QueryInput struct {
	Query string `json:"query" binding:"required"`
}

type ReplyResponse struct {
	Content      string `json:"content"`
	TokensUsed   int    `json:"tokens_used"`
	CoinsCharged int64  `json:"coins_charged"`
	BalanceAfter *int64 `json:"balance_after,omitempty"`
}
