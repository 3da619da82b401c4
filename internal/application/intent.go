package application

import (
	"context"

	"yatra/internal/domain"
)

type IntentParser interface {
	Parse(ctx context.Context, text string) (*domain.Interpretation, error)
}

type RouteFinder interface {
	FindRoutes(ctx context.Context, entities domain.Entities) ([]domain.TransportRoute, error)
}
