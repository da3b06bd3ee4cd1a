package controller

import (
	"errors"
	"fmt"
	"math"

	"textsummarizer/internal/domain"
)

// Message turns an error from Summarize into the text shown to the user.
func Message(err error) string {
	if err == nil {
		return "Summary generated!"
	}

	if errors.Is(err, ErrBusy) {
		return "Already processing. Please wait for the current summary."
	}

	var e *domain.Error
	if !errors.As(err, &e) {
		return "Failed to generate summary. Please try again."
	}

	switch e.Kind {
	case domain.KindValidation:
		return e.Message
	case domain.KindRetryable:
		return fmt.Sprintf("AI model is warming up. Please retry in ~%ds.", int(math.Ceil(e.EstimatedTime)))
	case domain.KindUnreachable:
		return "Cannot connect to server. Make sure the relay is running."
	case domain.KindStorage:
		return "Summary could not be saved to history."
	default:
		return "Failed to generate summary. Please try again."
	}
}
