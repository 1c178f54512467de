package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Reasons carried by EventsChangedMessage.
const (
	ReasonEventCreated = "event_created"
	ReasonEventUpdated = "event_updated"
	ReasonEventDeleted = "event_deleted"
	ReasonSettings     = "settings_updated"
)

// EventsChangedMessage tells the worker that a user's cashflow may have
// changed. It carries no event data; the worker reloads the snapshot.
type EventsChangedMessage struct {
	UserID    string    `json:"uid"`
	EventID   string    `json:"eventId,omitempty"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventsChangedMessage(userID, eventID, reason string) *EventsChangedMessage {
	return &EventsChangedMessage{
		UserID:    userID,
		EventID:   eventID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

func (m *EventsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EventsChangedMessageFromJSON(data []byte) (*EventsChangedMessage, error) {
	var msg EventsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, errors.New("message has no uid")
	}
	return &msg, nil
}
