package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateActivateLeadsInput(input ActivateLeadsInput) []ValidationError {
	var errors []ValidationError

	if len(input.LeadIDs) == 0 {
		errors = append(errors, ValidationError{"lead_ids", "at least one lead id is required"})
	}
	for _, id := range input.LeadIDs {
		if strings.TrimSpace(id) == "" {
			errors = append(errors, ValidationError{"lead_ids", "must not contain empty ids"})
			break
		}
	}

	return errors
}
