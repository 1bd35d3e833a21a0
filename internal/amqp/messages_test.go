package amqp

import (
	"testing"
	"time"
)

func TestExpenseEventMessageRoundTrip(t *testing.T) {
	msg := NewExpenseEventMessage(ActionCreated, "abc-123")
	if msg.Timestamp.IsZero() {
		t.Fatal("timestamp must be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded, err := ExpenseEventMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Action != ActionCreated || decoded.ExpenseID != "abc-123" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if !decoded.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestExpenseEventMessageFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseEventMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
