package localize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *BeliefSnapshot {
	return &BeliefSnapshot{
		Width:      2,
		Height:     2,
		Cells:      []float64{1.0 / 73, 8.0 / 73, 64.0 / 73, 0},
		Pose:       Pose{Row: 1, Col: 0},
		Generation: 3,
		Timestamp:  1700000000,
	}
}

func TestPublishEstimate(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	mock := NewMockClient()
	mock.SetConnected(true)

	p := NewPublisher(mock, "rover-1")
	err := p.PublishEstimate(Pose{Row: 1, Col: 0}, testSnapshot())
	require.NoError(t, err)

	messages := mock.GetPublishedMessages()
	require.Len(t, messages, 2)

	assert.Equal(t, "gridloc/rover-1/pose", messages[0].Topic)
	assert.True(t, messages[0].Retain)

	var pose PoseMessage
	require.NoError(t, json.Unmarshal(messages[0].Payload, &pose))
	assert.Equal(t, "rover-1", pose.RobotID)
	assert.Equal(t, 0, pose.X) // column
	assert.Equal(t, 1, pose.Y) // row
	assert.Equal(t, uint64(3), pose.Generation)

	assert.Equal(t, "gridloc/rover-1/belief", messages[1].Topic)
	var snap BeliefSnapshot
	require.NoError(t, json.Unmarshal(messages[1].Payload, &snap))
	assert.Equal(t, 2, snap.Width)
	assert.Len(t, snap.Cells, 4)
	assert.Equal(t, Pose{Row: 1, Col: 0}, snap.Pose)
}

func TestPublishPrefixOverride(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "fleet/loc")

	mock := NewMockClient()
	mock.SetConnected(true)

	p := NewPublisher(mock, "rover-1")
	require.NoError(t, p.PublishEstimate(Pose{}, testSnapshot()))

	messages := mock.GetPublishedMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "fleet/loc/rover-1/pose", messages[0].Topic)
	assert.Equal(t, "fleet/loc/rover-1/belief", messages[1].Topic)
}

func TestPublishEstimateDisconnected(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(false)

	p := NewPublisher(mock, "rover-1")
	err := p.PublishEstimate(Pose{}, testSnapshot())
	assert.Error(t, err)
	assert.Empty(t, mock.GetPublishedMessages())
}

func TestLastPose(t *testing.T) {
	t.Setenv("MQTT_PUBLISH_PREFIX", "")

	mock := NewMockClient()
	mock.SetConnected(true)
	p := NewPublisher(mock, "rover-1")

	_, ok := p.LastPose()
	assert.False(t, ok, "no pose before first publish")

	require.NoError(t, p.PublishEstimate(Pose{Row: 1, Col: 0}, testSnapshot()))

	last, ok := p.LastPose()
	require.True(t, ok)
	assert.Equal(t, 0, last.X)
	assert.Equal(t, 1, last.Y)
}
