package localize

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PoseMessage is the outbound MAP pose estimate. X is the column and Y
// the row of the most likely cell.
type PoseMessage struct {
	RobotID    string `json:"robotId"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Generation uint64 `json:"generation"`
	Timestamp  int64  `json:"timestamp"`
}

// Publisher forwards MAP poses and belief snapshots to the broker.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	robotID       string
	qos           byte
	retain        bool
	mu            sync.RWMutex
	lastPose      *PoseMessage
}

// NewPublisher creates a publisher for the given robot. If client is
// nil, publishing is disabled (for testing).
func NewPublisher(client mqtt.Client, robotID string) *Publisher {
	prefix := os.Getenv("MQTT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "gridloc"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		robotID:       robotID,
		qos:           0,    // Fire and forget for estimate updates
		retain:        true, // Retain latest estimate for late subscribers
	}
}

// PublishEstimate publishes the MAP pose and the belief snapshot
// produced by an applied scan.
func (p *Publisher) PublishEstimate(pose Pose, snapshot *BeliefSnapshot) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	msg := &PoseMessage{
		RobotID:    p.robotID,
		X:          pose.Col,
		Y:          pose.Row,
		Generation: snapshot.Generation,
		Timestamp:  time.Now().Unix(),
	}

	p.mu.Lock()
	p.lastPose = msg
	p.mu.Unlock()

	if err := p.publishPose(msg); err != nil {
		log.Printf("Error publishing pose for %s: %v", p.robotID, err)
		return err
	}
	if err := p.publishBelief(snapshot); err != nil {
		log.Printf("Error publishing belief for %s: %v", p.robotID, err)
		return err
	}
	return nil
}

// publishPose publishes the pose to <prefix>/<robotID>/pose.
func (p *Publisher) publishPose(msg *PoseMessage) error {
	topic := fmt.Sprintf("%s/%s/pose", p.publishPrefix, p.robotID)

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling pose: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published pose for %s: (%d, %d) gen=%d", p.robotID, msg.X, msg.Y, msg.Generation)
	return nil
}

// publishBelief publishes the snapshot to <prefix>/<robotID>/belief.
func (p *Publisher) publishBelief(snapshot *BeliefSnapshot) error {
	topic := fmt.Sprintf("%s/%s/belief", p.publishPrefix, p.robotID)

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling belief snapshot: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// LastPose returns the most recently published pose.
func (p *Publisher) LastPose() (*PoseMessage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.lastPose == nil {
		return nil, false
	}
	msg := *p.lastPose
	return &msg, true
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2).
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker.
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
