package usecase

import "context"

type Member interface {
	GetMembers(ctx context.Context) ([]map[string]any, error)
}
