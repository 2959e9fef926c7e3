package dispatch

// OutcomeStatus tags a per-recipient dispatch result.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailure OutcomeStatus = "failure"
)

// Outcome is the result of dispatching to one recipient. A batch always
// yields one Outcome per requested recipient, in input order, regardless of
// individual failures.
type Outcome struct {
	RecipientID string        `json:"user_id"`
	ChatID      string        `json:"chat_id,omitempty"`
	MessageID   string        `json:"message_id,omitempty"`
	Status      OutcomeStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
}

func successOutcome(recipientID, chatID, messageID string) Outcome {
	return Outcome{
		RecipientID: recipientID,
		ChatID:      chatID,
		MessageID:   messageID,
		Status:      StatusSuccess,
	}
}

func failureOutcome(recipientID, chatID string, err error) Outcome {
	return Outcome{
		RecipientID: recipientID,
		ChatID:      chatID,
		Status:      StatusFailure,
		Error:       err.Error(),
	}
}
