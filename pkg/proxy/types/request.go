package types

import "lexiclaire/gateway/pkg/gateway"

// ChatMessage is one earlier turn of the conversation.
type ChatMessage struct {
	// Type is the speaker, "human" or "ai".
	Type string `json:"type"`

	// Content is the message text.
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. Field names follow the front
// end and the Analysis Backend, which share the camelCase shape.
type ChatRequest struct {
	// Question is the user's new question.
	Question string `json:"question"`

	// History is the prior conversation, oldest first. Optional.
	History []ChatMessage `json:"history,omitempty"`

	// DocumentID identifies the analyzed document. Used for the result record.
	DocumentID string `json:"documentId,omitempty"`

	// AnalyzedText is the document text the backend answers from.
	AnalyzedText string `json:"analyzedText,omitempty"`
}

// Gateway converts the client request into the upstream request.
// History is never nil so the backend always receives a list.
func (r *ChatRequest) Gateway() gateway.ChatRequest {
	history := make([]gateway.ChatMessage, 0, len(r.History))
	for _, m := range r.History {
		history = append(history, gateway.ChatMessage{Type: m.Type, Content: m.Content})
	}
	return gateway.ChatRequest{
		Question:     r.Question,
		History:      history,
		DocumentID:   r.DocumentID,
		AnalyzedText: r.AnalyzedText,
	}
}
