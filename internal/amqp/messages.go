package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"debtpilot/internal/core"
)

// AlertMessage carries the alerts raised for one stored plan during a scan.
type AlertMessage struct {
	ID        string       `json:"id"`
	PlanID    string       `json:"planId"`
	PlanName  string       `json:"planName,omitempty"`
	Alerts    []core.Alert `json:"alerts"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewAlertMessage(planID, planName string, alerts []core.Alert, now time.Time) *AlertMessage {
	return &AlertMessage{
		ID:        uuid.NewString(),
		PlanID:    planID,
		PlanName:  planName,
		Alerts:    alerts,
		Timestamp: now.UTC(),
	}
}

func (m *AlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertMessageFromJSON decodes a message and rejects one without a plan.
func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.PlanID == "" {
		return nil, errors.New("alert message without plan id")
	}
	return &msg, nil
}
