// Package keyword interprets transport queries with plain substring checks
// against a landmark table. There is no tokenization or stemming: only
// case-folded containment, so non-Latin queries only match if the table
// carries aliases in that script.
package keyword

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"yatra/internal/domain"
)

// Transport keywords in evaluation order. A later match overwrites an
// earlier one, so "bus or metro" yields metro.
var transportKeywords = []domain.TransportType{
	domain.TransportTypeBus,
	domain.TransportTypeTrain,
	domain.TransportTypeMetro,
}

// Time frames in priority order. The first match wins.
var timeFrames = []string{"next", "morning", "evening"}

type Interpreter struct {
	landmarks []domain.Landmark
}

// NewInterpreter copies landmarks. Their order is significant: when several
// aliases occur in a query the last one in table order sets the destination.
func NewInterpreter(landmarks []domain.Landmark) *Interpreter {
	return &Interpreter{landmarks: append([]domain.Landmark(nil), landmarks...)}
}

func (i *Interpreter) Parse(_ context.Context, text string) (*domain.Interpretation, error) {
	result := i.Interpret(text)
	return &result, nil
}

func (i *Interpreter) Interpret(query string) domain.Interpretation {
	q := normalize(query)

	result := domain.Interpretation{
		Intent:   domain.IntentUnknown,
		Entities: domain.Entities{},
	}

	for _, t := range transportKeywords {
		if strings.Contains(q, string(t)) {
			result.Intent = domain.IntentTransportSearch
			result.Entities[domain.EntityTransportType] = string(t)
		}
	}

	for _, l := range i.landmarks {
		if strings.Contains(q, l.Alias) {
			result.Intent = domain.IntentTransportSearch
			result.Entities[domain.EntityDestination] = l.Name
		}
	}

	for _, tf := range timeFrames {
		if strings.Contains(q, tf) {
			result.Entities[domain.EntityTimeFrame] = tf
			break
		}
	}

	return result
}

// A Caser keeps state between calls, so each query gets its own.
func normalize(s string) string {
	return cases.Lower(language.Und).String(s)
}
