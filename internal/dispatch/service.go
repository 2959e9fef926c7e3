// Package dispatch turns one inbound send request into the dependent chain
// of Graph calls behind it: resolve caller, create the one-on-one chat,
// upload the asset, compose and post the message, fanned out per recipient.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/itsaavisos/gateway/internal/assets"
	"github.com/itsaavisos/gateway/internal/graph"
)

// Service dispatches chat messages on behalf of the calling user. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	graph  *graph.Client
	assets *assets.Service
	logger *slog.Logger
}

// NewService creates a dispatch service.
func NewService(log *slog.Logger, client *graph.Client, assetService *assets.Service) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		graph:  client,
		assets: assetService,
		logger: log.With(slog.String("service", "dispatch")),
	}
}

// SendText creates a fresh one-on-one chat with the recipient and posts a
// plain text message into it, returning the provider's message object.
func (s *Service) SendText(ctx context.Context, token graph.Token, recipientID, text string) (graph.Message, error) {
	caller, err := s.graph.Me(ctx, token)
	if err != nil {
		return graph.Message{}, err
	}
	chatID, err := s.graph.CreateOneOnOneChat(ctx, token, caller.ID, recipientID)
	if err != nil {
		return graph.Message{}, err
	}
	msg := graph.ChatMessage{
		Body: graph.ItemBody{ContentType: "text", Content: text},
	}
	return s.graph.SendChatMessage(ctx, token, chatID, msg)
}

// SendFileToRecipients uploads the payload once and then dispatches a
// card-plus-attachment message to every recipient in input order. Recipient
// failures are isolated: each one yields a failure Outcome and the batch
// continues. The returned error covers only the shared upstream steps
// (caller resolution, upload), which fail the whole request.
func (s *Service) SendFileToRecipients(ctx context.Context, token graph.Token, recipientIDs []string, text string, content []byte, fileName string) ([]Outcome, error) {
	caller, err := s.graph.Me(ctx, token)
	if err != nil {
		return nil, err
	}
	asset, err := s.assets.Upload(ctx, token, content, fileName)
	if err != nil {
		return nil, err
	}
	return s.fanOut(ctx, token, caller.ID, recipientIDs, text, asset), nil
}

// fanOut dispatches the composed message to each recipient sequentially.
// Caller identity and the asset are resolved once by the caller and reused.
func (s *Service) fanOut(ctx context.Context, token graph.Token, callerID string, recipientIDs []string, text string, asset assets.Asset) []Outcome {
	outcomes := make([]Outcome, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		outcomes = append(outcomes, s.sendToRecipient(ctx, token, callerID, recipientID, text, asset))
	}
	return outcomes
}

func (s *Service) sendToRecipient(ctx context.Context, token graph.Token, callerID, recipientID, text string, asset assets.Asset) Outcome {
	chatID, err := s.graph.CreateOneOnOneChat(ctx, token, callerID, recipientID)
	if err != nil {
		s.logger.Warn("create chat failed",
			slog.String("recipient_id", recipientID),
			slog.Any("error", err),
		)
		return failureOutcome(recipientID, "", err)
	}
	msg, err := buildAttachmentMessage(text, asset)
	if err != nil {
		return failureOutcome(recipientID, chatID, err)
	}
	created, err := s.graph.SendChatMessage(ctx, token, chatID, msg)
	if err != nil {
		s.logger.Warn("send message failed",
			slog.String("recipient_id", recipientID),
			slog.String("chat_id", chatID),
			slog.Any("error", err),
		)
		return failureOutcome(recipientID, chatID, err)
	}
	return successOutcome(recipientID, chatID, created.ID)
}
