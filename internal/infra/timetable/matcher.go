// Package timetable answers route lookups from the seeded route table.
package timetable

import (
	"context"

	"yatra/internal/domain"
)

// Matcher serves a single destination. A query for exactly that destination
// gets every seeded route in table order; anything else gets nothing.
type Matcher struct {
	destination string
	routes      []domain.TransportRoute
}

func NewMatcher(destination string, routes []domain.TransportRoute) *Matcher {
	return &Matcher{
		destination: destination,
		routes:      append([]domain.TransportRoute(nil), routes...),
	}
}

func (m *Matcher) FindRoutes(_ context.Context, entities domain.Entities) ([]domain.TransportRoute, error) {
	return m.Match(entities), nil
}

// Match never returns nil. The returned slice is a copy of the table.
func (m *Matcher) Match(entities domain.Entities) []domain.TransportRoute {
	dest, ok := entities.Get(domain.EntityDestination)
	if !ok || dest != m.destination {
		return []domain.TransportRoute{}
	}

	out := make([]domain.TransportRoute, len(m.routes))
	copy(out, m.routes)
	return out
}

func (m *Matcher) Destination() string {
	return m.destination
}
