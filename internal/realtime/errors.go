package realtime

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcoot/idlecoins/internal/model"
)

// ErrorMessage maps a domain error to the text shown to the player
func ErrorMessage(err error) string {
	var missing *model.MissingRequirementsError
	var limit *model.OwnershipLimitError

	switch {
	case errors.As(err, &missing):
		return "Missing requirements: " + strings.Join(missing.Missing, ", ")
	case errors.As(err, &limit):
		return fmt.Sprintf("You can only own %d of this upgrade", limit.Limit)
	case errors.Is(err, model.ErrInsufficientFunds):
		return "Not enough money"
	case errors.Is(err, model.ErrAlreadyOwned):
		return "You already own this upgrade!"
	case errors.Is(err, model.ErrUnknownUpgrade):
		return "Invalid upgrade"
	case errors.Is(err, model.ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, model.ErrInvalidInput):
		return "Invalid message"
	default:
		return "Something went wrong"
	}
}
