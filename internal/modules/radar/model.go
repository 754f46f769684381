// README: Messages pushed to a viewer and the events a session consumes.
package radar

import (
	"crowdradar/internal/modules/area"
	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/modules/snapshot"
	"crowdradar/internal/types"
)

type MessageType string

const (
	// MessageRefresh announces that viewer movement triggered a re-fetch.
	MessageRefresh MessageType = "refresh"
	// MessageSnapshot carries the full displayed set and the diff against the previous one.
	MessageSnapshot MessageType = "snapshot"
	// MessageStale reports a failed fetch; the previous snapshot stays on screen.
	MessageStale MessageType = "stale"
	MessageArea  MessageType = "area"
	MessageError MessageType = "error"
)

type Message struct {
	Type     MessageType              `json:"type"`
	Seq      uint64                   `json:"seq,omitempty"`
	Location *types.Point             `json:"location,omitempty"`
	MovedM   float64                  `json:"moved_m,omitempty"`
	Points   []busyness.ResolvedPoint `json:"points,omitempty"`
	Diff     *snapshot.Diff           `json:"diff,omitempty"`
	Area     *area.Status             `json:"area,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// Trigger names why a fetch was issued.
type Trigger string

const (
	TriggerMove    Trigger = "move"
	TriggerChanged Trigger = "changed"
)

type event interface{ isEvent() }

type locationEvent struct {
	loc types.Point
}

type fetchDoneEvent struct {
	seq     uint64
	trigger Trigger
	points  []busyness.PointOfInterest
	err     error
}

func (locationEvent) isEvent()  {}
func (fetchDoneEvent) isEvent() {}
