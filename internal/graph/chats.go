package graph

import (
	"context"
	"fmt"
)

const (
	chatTypeOneOnOne = "oneOnOne"
	memberODataType  = "#microsoft.graph.aadUserConversationMember"
	roleOwner        = "owner"

	// AdaptiveCardContentType tags a chat message attachment as an adaptive
	// card whose content is a JSON-encoded card document.
	AdaptiveCardContentType = "application/vnd.microsoft.card.adaptive"
)

type conversationMember struct {
	ODataType string   `json:"@odata.type"`
	Roles     []string `json:"roles"`
	UserBind  string   `json:"user@odata.bind"`
}

type createChatRequest struct {
	ChatType string               `json:"chatType"`
	Members  []conversationMember `json:"members"`
}

type chat struct {
	ID string `json:"id"`
}

// ItemBody is a chat message body.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// MessageAttachment references structured content attached to a message.
type MessageAttachment struct {
	ID          string `json:"id"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// ChatMessage is an outbound chat message.
type ChatMessage struct {
	Body        ItemBody            `json:"body"`
	Attachments []MessageAttachment `json:"attachments,omitempty"`
}

// Message is the provider's representation of a created chat message.
type Message struct {
	ID              string   `json:"id"`
	ChatID          string   `json:"chatId,omitempty"`
	CreatedDateTime string   `json:"createdDateTime,omitempty"`
	Body            ItemBody `json:"body"`
}

// CreateOneOnOneChat creates a fresh two-member chat between the caller and
// the recipient, both with the owner role. It never reuses an existing chat;
// Graph itself collapses duplicate one-on-one chats server side.
func (c *Client) CreateOneOnOneChat(ctx context.Context, token Token, callerID, recipientID string) (string, error) {
	req := createChatRequest{
		ChatType: chatTypeOneOnOne,
		Members: []conversationMember{
			{
				ODataType: memberODataType,
				Roles:     []string{roleOwner},
				UserBind:  c.baseURL + "/users/" + callerID,
			},
			{
				ODataType: memberODataType,
				Roles:     []string{roleOwner},
				UserBind:  c.baseURL + "/users/" + recipientID,
			},
		},
	}
	var created chat
	if err := c.postJSON(ctx, token, "/chats", req, &created); err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}
	return created.ID, nil
}

// SendChatMessage posts a message into an existing chat.
func (c *Client) SendChatMessage(ctx context.Context, token Token, chatID string, msg ChatMessage) (Message, error) {
	var created Message
	if err := c.postJSON(ctx, token, "/chats/"+chatID+"/messages", msg, &created); err != nil {
		return Message{}, fmt.Errorf("send chat message: %w", err)
	}
	return created, nil
}
