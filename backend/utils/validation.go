package utils

import (
	"regexp"

	"github.com/ellavondegurechaff/gohye-progression/backend/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/services"
)

var (
	// ValidUserIDRegex accepts platform snowflakes and uuids
	ValidUserIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]{1,64}$`)

	// ValidTrackingTypeRegex validates tracking types and command names
	ValidTrackingTypeRegex = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

func ValidateUserID(userID string) []models.ValidationError {
	if !ValidUserIDRegex.MatchString(userID) {
		return []models.ValidationError{{Field: "user_id", Description: "User ID is missing or contains invalid characters"}}
	}
	return nil
}

func validateName(field, value string) []models.ValidationError {
	if value == "" {
		return []models.ValidationError{{Field: field, Description: "Field is required"}}
	}
	if !ValidTrackingTypeRegex.MatchString(value) {
		return []models.ValidationError{{Field: field, Description: "Only lowercase letters, digits and underscores are allowed"}}
	}
	return nil
}

// ValidateAddExpRequest only checks shape. Non-positive amounts are a no-op in
// the service, not an error.
func ValidateAddExpRequest(req *models.AddExpRequest) []models.ValidationError {
	if req.Source != "" && !ValidTrackingTypeRegex.MatchString(req.Source) {
		return []models.ValidationError{{Field: "source", Description: "Only lowercase letters, digits and underscores are allowed"}}
	}
	return nil
}

func ValidateTrackRequest(req *models.TrackRequest) []models.ValidationError {
	return validateName("tracking_type", req.TrackingType)
}

func ValidateCommandRequest(req *models.CommandRequest) []models.ValidationError {
	return validateName("command", req.Command)
}

func ValidateQuestProgressRequest(req *models.QuestProgressRequest) []models.ValidationError {
	errors := validateName("tracking_type", req.TrackingType)
	if req.Value < 0 {
		errors = append(errors, models.ValidationError{Field: "value", Description: "Value must not be negative"})
	}
	switch req.Scope {
	case "":
		req.Scope = services.ScopeAll
	case services.ScopeDaily, services.ScopeWeekly, services.ScopeAll:
	default:
		errors = append(errors, models.ValidationError{Field: "scope", Description: "Scope must be daily, weekly or all"})
	}
	return errors
}
