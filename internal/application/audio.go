package application

import (
	"context"

	"yatra/internal/domain"
)

type AudioSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) (*domain.Utterance, error)
	Name() string
}
