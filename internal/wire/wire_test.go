package wire

import (
	"testing"

	"github.com/specialistvlad/transithub/internal/pathfinder"
	"github.com/specialistvlad/transithub/internal/roadstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeRoads() []Road {
	return []Road{
		{Source: 1, Destination: 2, Length: 4},
		{Source: 2, Destination: 3, Length: 3},
		{Source: 1, Destination: 3, Length: 10},
	}
}

func TestRoads_ClampsDeclaredCount(t *testing.T) {
	testCases := []struct {
		name        string
		roadCount   int
		wantLen     int
		wantClamped bool
	}{
		{name: "exact", roadCount: 3, wantLen: 3, wantClamped: false},
		{name: "declared more than supplied", roadCount: 5, wantLen: 3, wantClamped: true},
		{name: "declared fewer than supplied", roadCount: 1, wantLen: 1, wantClamped: true},
		{name: "negative", roadCount: -1, wantLen: 0, wantClamped: true},
		{name: "zero", roadCount: 0, wantLen: 0, wantClamped: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{RoadCount: tc.roadCount, Edges: threeRoads()}

			edges, clamped := q.Roads()

			assert.Len(t, edges, tc.wantLen)
			assert.Equal(t, tc.wantClamped, clamped)
		})
	}
}

func TestRoads_TruncatesToLeadingRoads(t *testing.T) {
	q := Question{RoadCount: 1, Edges: threeRoads()}

	edges, _ := q.Roads()

	assert.Equal(t, []roadstore.Edge{{Source: 1, Destination: 2, Length: 4}}, edges)
}

func TestDecodeQuestion(t *testing.T) {
	raw := `{"road_count":2,"edges":[{"source":1,"destination":2,"length":4},{"source":2,"destination":3,"length":3}],"origin":1,"destination":3}`

	q, err := DecodeQuestion([]byte(raw))

	require.NoError(t, err)
	assert.Equal(t, 2, q.RoadCount)
	assert.Len(t, q.Edges, 2)
	origin, destination := q.Endpoints()
	assert.Equal(t, roadstore.NodeID(1), origin)
	assert.Equal(t, roadstore.NodeID(3), destination)
	assert.Empty(t, q.ID)
}

func TestDecodeQuestion_Invalid(t *testing.T) {
	_, err := DecodeQuestion([]byte(`{"road_count":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode question")
}

func TestQuestionFromPayload_DecodedObject(t *testing.T) {
	payload := map[string]any{
		"id":         "q-1",
		"road_count": float64(1),
		"edges": []any{
			map[string]any{"source": float64(5), "destination": float64(6), "length": float64(2)},
		},
		"origin":      float64(5),
		"destination": float64(6),
	}

	q, err := QuestionFromPayload(payload)

	require.NoError(t, err)
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, []Road{{Source: 5, Destination: 6, Length: 2}}, q.Edges)
}

func TestQuestionFromPayload_Unsupported(t *testing.T) {
	_, err := QuestionFromPayload(42)
	require.Error(t, err)

	_, err = QuestionFromPayload(nil)
	require.Error(t, err)
}

func TestNewAnswer_EmptyPathIsNotNull(t *testing.T) {
	answer := NewAnswer("a-1", pathfinder.Result{Path: nil, Outcome: pathfinder.Unreachable})

	data, err := Encode(answer)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a-1","path":[]}`, string(data))
}

func TestNewAnswer_CopiesPath(t *testing.T) {
	answer := NewAnswer("a-2", pathfinder.Result{Path: []roadstore.NodeID{1, 2, 3}})

	data, err := Encode(answer)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a-2","path":[1,2,3]}`, string(data))
}

func TestVerdictFromPayload(t *testing.T) {
	v, err := VerdictFromPayload(map[string]any{"score": float64(100), "log": "accepted"})

	require.NoError(t, err)
	assert.Equal(t, Verdict{Score: 100, Log: "accepted"}, v)

	v, err = VerdictFromPayload(`{"score":0,"log":"wrong path"}`)
	require.NoError(t, err)
	assert.Equal(t, "wrong path", v.Log)
}
