// Package tasks defines the messages exchanged over Kafka.
package tasks

import "time"

// FootprintEvent is published once for every estimate produced in a chat reply.
type FootprintEvent struct {
	EventID   string    `json:"event_id"`
	SessionID string    `json:"session_id"`
	Activity  string    `json:"activity"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	KgCO2     float64   `json:"kg_co2"`
	CreatedAt time.Time `json:"created_at"`
}
