package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry in a conversation. Position is the zero-based
// chronological index within the conversation and is assigned atomically
// on append.
type Message struct {
	ID             int64            `json:"id"`
	ConversationID int64            `json:"conversation_id"`
	Position       int              `json:"position"`
	Role           Role             `json:"role"`
	Content        string           `json:"content"`
	IsVoice        bool             `json:"is_voice,omitempty"`
	Metadata       *MessageMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// MessageMetadata is the optional JSON blob stored with a message. Reply
// messages carry search results when the search produced offers;
// recommendation messages carry the recommendation blocks.
type MessageMetadata struct {
	SearchResults   *SearchResults        `json:"searchResults,omitempty"`
	Recommendations []RecommendationBlock `json:"recommendations,omitempty"`
}
