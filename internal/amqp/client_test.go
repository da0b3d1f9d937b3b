package amqp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"debtpilot/internal/core"
)

type recordingAcker struct {
	acked, nacked, requeued int
}

func (a *recordingAcker) Ack(uint64, bool) error { a.acked++; return nil }

func (a *recordingAcker) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *recordingAcker) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

func delivery(t *testing.T, acker *recordingAcker, msg *AlertMessage) amqp091.Delivery {
	t.Helper()
	body := []byte("{not json")
	if msg != nil {
		var err error
		if body, err = msg.ToJSON(); err != nil {
			t.Fatal(err)
		}
	}
	return amqp091.Delivery{Acknowledger: acker, Body: body}
}

func sampleMessage() *AlertMessage {
	alerts := []core.Alert{{Type: core.AlertError, Title: "High Interest Warning"}}
	return NewAlertMessage("plan-1", "household", alerts, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC))
}

func TestNewAlertMessage(t *testing.T) {
	msg := sampleMessage()
	if msg.ID == "" || msg.PlanID != "plan-1" || len(msg.Alerts) != 1 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if other := sampleMessage(); other.ID == msg.ID {
		t.Fatal("message ids must be unique")
	}
}

func TestAlertMessageFromJSONRequiresPlan(t *testing.T) {
	if _, err := AlertMessageFromJSON([]byte(`{"id":"x","alerts":[]}`)); err == nil {
		t.Fatal("expected error for message without plan id")
	}
}

func TestHandleDelivery(t *testing.T) {
	ctx := context.Background()

	t.Run("ack on success", func(t *testing.T) {
		acker := &recordingAcker{}
		var got *AlertMessage
		handleDelivery(ctx, delivery(t, acker, sampleMessage()), func(_ context.Context, m *AlertMessage) error {
			got = m
			return nil
		})
		if acker.acked != 1 || acker.nacked != 0 {
			t.Fatalf("acker %+v", acker)
		}
		if got == nil || got.PlanName != "household" || got.Alerts[0].Type != core.AlertError {
			t.Fatalf("handler got %+v", got)
		}
	})

	t.Run("requeue on handler error", func(t *testing.T) {
		acker := &recordingAcker{}
		handleDelivery(ctx, delivery(t, acker, sampleMessage()), func(context.Context, *AlertMessage) error {
			return errors.New("downstream unavailable")
		})
		if acker.requeued != 1 || acker.acked != 0 {
			t.Fatalf("acker %+v", acker)
		}
	})

	t.Run("drop undecodable body", func(t *testing.T) {
		acker := &recordingAcker{}
		called := false
		handleDelivery(ctx, delivery(t, acker, nil), func(context.Context, *AlertMessage) error {
			called = true
			return nil
		})
		if called || acker.nacked != 1 || acker.requeued != 0 {
			t.Fatalf("called=%v acker %+v", called, acker)
		}
	})
}
