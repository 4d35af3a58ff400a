package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/quickshop/quickshop-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Role       enums.ActorRole
	StoreID    *uuid.UUID
	CustomerID string
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients. Merchant
// tokens carry a store claim; storefront session tokens carry the customer
// identifier plus the store the session belongs to.
type AccessTokenClaims struct {
	Role       enums.ActorRole `json:"role"`
	StoreID    *uuid.UUID      `json:"store_id,omitempty"`
	CustomerID string          `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}
