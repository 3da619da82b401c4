package domain

type Intent string

const (
	IntentUnknown         Intent = "unknown"
	IntentTransportSearch Intent = "transport_search"
)

type EntityKind string

const (
	EntityTransportType EntityKind = "transportType"
	EntityDestination   EntityKind = "destination"
	EntityTimeFrame     EntityKind = "timeFrame"
)

// Entities holds extracted values. A key is present only when detected.
type Entities map[EntityKind]string

func (e Entities) Get(kind EntityKind) (string, bool) {
	v, ok := e[kind]
	return v, ok
}

type Interpretation struct {
	Intent   Intent   `json:"intent"`
	Entities Entities `json:"entities"`
}

type Landmark struct {
	Alias string `yaml:"alias"`
	Name  string `yaml:"name"`
}

type ExampleQuery struct {
	Text     string   `json:"text" yaml:"text"`
	Language Language `json:"language" yaml:"language"`
}

type QueryResult struct {
	Query      string           `json:"query"`
	Language   Language         `json:"language"`
	Intent     Intent           `json:"intent"`
	Entities   Entities         `json:"entities"`
	Routes     []TransportRoute `json:"routes"`
	Transcript *Transcript      `json:"transcript,omitempty"`
	Notice     string           `json:"notice,omitempty"`
}
