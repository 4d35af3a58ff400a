package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/api/middleware"
	pkgerrors "github.com/quickshop/quickshop-backend/pkg/errors"
)

func storeIDFromContext(r *http.Request) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	raw := middleware.StoreIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	storeID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return storeID, nil
}

func customerIDFromContext(r *http.Request) (string, error) {
	if r == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session missing")
	}
	customerID := middleware.CustomerIDFromContext(r.Context())
	if customerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "customer session missing")
	}
	return customerID, nil
}
