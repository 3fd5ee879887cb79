package service

import "errors"

// Common service errors
var (
	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrOrderNotFound is returned when an order is not found
	ErrOrderNotFound = errors.New("order not found")

	// ErrCatalogEntryNotFound is returned when a catalog entry is not found
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")

	// ErrMessageNotFound is returned when a message is not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrProposalNotFound is returned when an order carries no proposal
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrBudgetExceeded is returned when committing a cart would push a
	// project's remaining budget below zero
	ErrBudgetExceeded = errors.New("project budget exceeded")

	// ErrCatalogUnavailable is returned when a cart line references a catalog
	// item that is out of stock or whose supplier contract is inactive
	ErrCatalogUnavailable = errors.New("catalog item unavailable")

	// ErrIncompleteProposal is returned when a proposal candidate is missing
	// its company name or budget
	ErrIncompleteProposal = errors.New("incomplete proposal")

	// ErrActionNotAllowed is returned when an order's state forbids the
	// requested lifecycle action
	ErrActionNotAllowed = errors.New("action not allowed")

	// ErrCandidateRequired is returned when a multi-candidate proposal is
	// accepted without naming a candidate index
	ErrCandidateRequired = errors.New("candidate index required")

	// ErrProposalResponded is returned when modifying a proposal the
	// requester has already answered
	ErrProposalResponded = errors.New("proposal already responded")
)
