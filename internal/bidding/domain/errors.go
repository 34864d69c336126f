package domain

import "errors"

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrBidNotFound             = errors.New("bid not found")
	ErrInvalidAmount           = errors.New("bid amount cannot be zero or less than zero")
	ErrBidTooLow               = errors.New("bid amount is below the minimum bid price")
	ErrUnauthorized            = errors.New("actor is not the seller of this product")
	ErrInvalidDecision         = errors.New("decision must be accept or reject")
	ErrAlreadyDecided          = errors.New("bid has already been decided")
	ErrProductAlreadyResolved  = errors.New("product already has an accepted bid")
	ErrCollaboratorUnavailable = errors.New("listing collaborator unavailable")
)
