package http

import (
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/application/auth"
	"github.com/pr-poehali-dev/tracks-distribution-platform/internal/pkg/code"
)

// Deps holds all infrastructure dependencies for the router. The fields
// are the narrow interfaces the auth service requires, so tests can plug
// in the in-memory store and a fake notifier.
type Deps struct {
	UserRepo auth.UserRepository
	CodeRepo auth.CodeRepository
	Notifier auth.Notifier
	CodeGen  *code.Generator
}
