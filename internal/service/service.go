package service

import "go-wms/internal/apperr"

// requireActor guards every mutating command: audit fields need a caller
// identity.
func requireActor(actor string) error {
	if actor == "" {
		return apperr.Validation("current user required")
	}
	return nil
}
