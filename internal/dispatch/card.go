package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/itsaavisos/gateway/internal/assets"
	"github.com/itsaavisos/gateway/internal/graph"
)

const (
	adaptiveCardSchema  = "http://adaptivecards.io/schemas/adaptive-card.json"
	adaptiveCardVersion = "1.2"

	cardExplanatoryLine = "Here is the file you requested. You can open it or use the preview if one is available."
	cardOpenActionTitle = "\U0001F4C2 Open file"
)

type adaptiveCard struct {
	Type    string        `json:"type"`
	Body    []cardElement `json:"body"`
	Actions []cardAction  `json:"actions"`
	Schema  string        `json:"$schema"`
	Version string        `json:"version"`
}

type cardElement struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Size     string `json:"size,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
	URL      string `json:"url,omitempty"`
	AltText  string `json:"altText,omitempty"`
}

type cardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// buildFileCard renders the adaptive card presenting an uploaded file: name,
// explanatory line, preview image when one exists, and an open action
// pointing at the file's web URL.
func buildFileCard(asset assets.Asset) adaptiveCard {
	body := []cardElement{
		{
			Type:   "TextBlock",
			Text:   "\U0001F4C4 " + asset.Name,
			Weight: "bolder",
			Size:   "medium",
			Wrap:   true,
		},
		{
			Type:     "TextBlock",
			Text:     cardExplanatoryLine,
			IsSubtle: true,
			Wrap:     true,
		},
	}
	if asset.ThumbnailURL != "" {
		body = append(body, cardElement{
			Type:    "Image",
			URL:     asset.ThumbnailURL,
			Size:    "medium",
			AltText: "File preview",
		})
	}
	return adaptiveCard{
		Type: "AdaptiveCard",
		Body: body,
		Actions: []cardAction{
			{
				Type:  "Action.OpenUrl",
				Title: cardOpenActionTitle,
				URL:   asset.WebURL,
			},
		},
		Schema:  adaptiveCardSchema,
		Version: adaptiveCardVersion,
	}
}

// buildAttachmentMessage composes the html message carrying the caller's
// text, an inline attachment reference, and the card attached under the
// asset id.
func buildAttachmentMessage(text string, asset assets.Asset) (graph.ChatMessage, error) {
	card := buildFileCard(asset)
	encoded, err := json.Marshal(card)
	if err != nil {
		return graph.ChatMessage{}, fmt.Errorf("encode card: %w", err)
	}
	return graph.ChatMessage{
		Body: graph.ItemBody{
			ContentType: "html",
			Content:     fmt.Sprintf("%s<br><attachment id=%q></attachment>", text, asset.ID),
		},
		Attachments: []graph.MessageAttachment{
			{
				ID:          asset.ID,
				ContentType: graph.AdaptiveCardContentType,
				Content:     string(encoded),
			},
		},
	}, nil
}
