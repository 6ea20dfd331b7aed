package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-assistant-be/pkg/events"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	event := events.NewInterviewCriticalIssue("iv-1", "unrealistic_growth", "sales_target", "too high")

	data, err := Encode(event)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, events.InterviewCriticalIssue, decoded.EventType())
	assert.Equal(t, "sales_target", decoded.Payload()["field"])
	assert.WithinDuration(t, event.Timestamp(), decoded.Timestamp(), time.Second)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "interviews.INTERVIEW_COMPLETED", Subject(events.InterviewCompleted))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}
