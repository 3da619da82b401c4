package domain

type TransportType string

const (
	TransportTypeBus   TransportType = "bus"
	TransportTypeTrain TransportType = "train"
	TransportTypeMetro TransportType = "metro"
)

func (t TransportType) Valid() bool {
	switch t {
	case TransportTypeBus, TransportTypeTrain, TransportTypeMetro:
		return true
	}
	return false
}

type RouteStatus string

const (
	RouteStatusOnTime    RouteStatus = "on-time"
	RouteStatusDelayed   RouteStatus = "delayed"
	RouteStatusCancelled RouteStatus = "cancelled"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteStatusOnTime, RouteStatusDelayed, RouteStatusCancelled:
		return true
	}
	return false
}

// TransportRoute is one scheduled service. Times and durations are display
// strings and are never parsed.
type TransportRoute struct {
	ID            string        `json:"id" yaml:"id"`
	Type          TransportType `json:"type" yaml:"type"`
	Number        string        `json:"number" yaml:"number"`
	From          string        `json:"from" yaml:"from"`
	To            string        `json:"to" yaml:"to"`
	DepartureTime string        `json:"departureTime" yaml:"departure_time"`
	ArrivalTime   string        `json:"arrivalTime" yaml:"arrival_time"`
	Duration      string        `json:"duration" yaml:"duration"`
	Stops         int           `json:"stops" yaml:"stops"`
	Status        RouteStatus   `json:"status" yaml:"status"`
}
