package domain

import "context"

// PersonaStore holds the operator-configured persona. An empty string means no
// persona is set.
type PersonaStore interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, persona string) error
}
