package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Search(ctx context.Context, in SearchInput) (SearchOutput, error)
	ResolveByIDs(ctx context.Context, in BatchInput) (BatchOutput, error)
}
