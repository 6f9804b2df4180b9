package webapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/telephant/firewise/pkg/domain"
)

// Identity headers set by the upstream gateway after authentication. Which
// records belong to a scope is decided there, not here.
const (
	HeaderScopeKind = "X-Scope-Kind"
	HeaderScopeID   = "X-Scope-Id"
)

var errBadScope = errors.New("missing or malformed scope headers")

// scopeFromRequest extracts the ownership partition the request operates on.
func scopeFromRequest(c *fiber.Ctx) (domain.Scope, error) {
	kind := domain.ScopeKind(c.Get(HeaderScopeKind))
	switch kind {
	case domain.ScopePersonal, domain.ScopeFamily:
	default:
		return domain.Scope{}, errBadScope
	}

	id, err := uuid.Parse(c.Get(HeaderScopeID))
	if err != nil {
		return domain.Scope{}, errBadScope
	}
	return domain.Scope{Kind: kind, ID: id}, nil
}
