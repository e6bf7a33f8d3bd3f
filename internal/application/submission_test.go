package application

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_KeepsOrder(t *testing.T) {
	s := NewSubmission(
		Field{Key: "_id", Value: "abc"},
		Field{Key: "name", Value: "Jane"},
		Field{Key: "regNo", Value: "24CSE1234"},
	)
	s.Set("name", "Janet")
	s.Set("submittedAt", time.Date(2024, 7, 1, 10, 30, 0, 5e6, time.FixedZone("IST", 19800)))

	assert.Equal(t, []string{"_id", "name", "regNo", "submittedAt"}, s.Keys())
	assert.Equal(t, "abc", s.ID())
	assert.Equal(t, "Janet", s.Text("name"))
	assert.Equal(t, "2024-07-01T05:00:00.005Z", s.Text("submittedAt"))
	assert.Equal(t, "", s.Text("missing"))
	assert.Equal(t, 4, s.Len())
}

func TestSubmission_MarshalJSON(t *testing.T) {
	s := NewSubmission(
		Field{Key: "regNo", Value: "1"},
		Field{Key: "name", Value: "A"},
		Field{Key: "score", Value: 3},
		Field{Key: "note", Value: nil},
	)
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"regNo":"1","name":"A","score":3,"note":null}`, string(b))

	at := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	b, err = json.Marshal(NewSubmission(Field{Key: "submittedAt", Value: at}))
	require.NoError(t, err)
	assert.Equal(t, `{"submittedAt":"2024-07-01T10:00:00.000Z"}`, string(b))

	b, err = json.Marshal([]Submission{s})
	require.NoError(t, err)
	assert.Equal(t, `[{"regNo":"1","name":"A","score":3,"note":null}]`, string(b))
}
