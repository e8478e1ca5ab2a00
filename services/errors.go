package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrSportNameRequired    = errors.New("sport name is required")
	ErrSportTypeInvalid     = errors.New("sport type must be individual or team")
	ErrSportTreeTooDeep     = errors.New("a sub-sport cannot have its own children")
	ErrSportParentIsChild   = errors.New("parent sport must be a top-level category")
	ErrSportInactive        = errors.New("sport is not active")
	ErrSportSelectionEmpty  = errors.New("at least one sport must be selected")
	ErrSelfIncompatibility  = errors.New("a sport cannot be incompatible with itself")
	ErrCommunityInactive    = errors.New("community is not accepting registrations")
	ErrProfileFrozen        = errors.New("profile changes are closed after the freeze date")
	ErrStatusInvalid        = errors.New("invalid participant status provided")
	ErrStatusNotReviewable  = errors.New("participant is not awaiting review")
	ErrRejectedIsFinal      = errors.New("rejected registrations cannot be reopened")

	// Conflicts
	ErrUserUsernameConflict  = errors.New("username is already in use")
	ErrUserEmailConflict     = errors.New("email address is already in use")
	ErrCommunityNameConflict = errors.New("community name is already in use")
	ErrSportNameConflict     = errors.New("sport name is already in use")
	ErrDuplicateRegistration = errors.New("participant is already registered for this community")
	ErrLeaderboardConflict   = errors.New("leaderboard entry already exists for this community and sport")

	// Authentication and authorization
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Entity-specific not-found, kept distinct for clearer messages
	ErrUserNotFound        = errors.New("user not found")
	ErrSportNotFound       = errors.New("sport not found")
	ErrCommunityNotFound   = errors.New("community not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrVolunteerNotFound   = errors.New("volunteer not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrFormatNotFound      = errors.New("tournament format not found")
	ErrCalendarNotFound    = errors.New("calendar event not found")
	ErrConvenorNotFound    = errors.New("convenor not found")
	ErrLeaderboardNotFound = errors.New("leaderboard entry not found")
)
