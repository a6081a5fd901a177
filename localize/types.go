package localize

import "fmt"

// Direction indexes the four cardinal unit steps shared by the motion
// model, the sensor rays, and the scan payload order.
type Direction int

const (
	DirDown Direction = iota // toward increasing row
	DirLeft
	DirUp
	DirRight
)

// directionSteps holds the (row, col) unit step for each Direction.
var directionSteps = [4][2]int{
	{1, 0},  // down
	{0, -1}, // left
	{-1, 0}, // up
	{0, 1},  // right
}

// DirectionFromSymbol maps a movement command symbol to its Direction.
// Symbols outside N/W/S/E are rejected, never guessed.
func DirectionFromSymbol(symbol string) (Direction, error) {
	switch symbol {
	case "S":
		return DirDown, nil
	case "W":
		return DirLeft, nil
	case "N":
		return DirUp, nil
	case "E":
		return DirRight, nil
	}
	return 0, fmt.Errorf("unrecognized command symbol %q", symbol)
}

func (d Direction) String() string {
	switch d {
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Pose is a discrete cell position on the grid.
type Pose struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Scan holds one range reading per fixed world direction, in canonical
// order: down, left, up, right. Ranges are cell counts and may be
// fractional; they are rounded to the nearest cell when ray casting.
type Scan [4]float64

// OccupancyPayload is the wire format of a map message: cell codes laid
// out row-major, height rows of width columns, using the 0/100/-1
// free/wall/unknown convention.
type OccupancyPayload struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []int8 `json:"data"`
}

// BeliefSnapshot is a point-in-time copy of the posterior, published
// after every applied scan and served over HTTP for visualization.
type BeliefSnapshot struct {
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Cells      []float64 `json:"cells"` // row-major, normalized unless degenerate
	Pose       Pose      `json:"pose"`
	Generation uint64    `json:"generation"`
	Timestamp  int64     `json:"timestamp"`
}

// MotionParams are the five configured motion probabilities. All five
// must be present; they are assumed, but not checked, to sum to 1.
type MotionParams struct {
	Stay      *float64 `yaml:"stayProbability" json:"stayProbability"`
	Forward   *float64 `yaml:"forwardProbability" json:"forwardProbability"`
	RightTurn *float64 `yaml:"rightTurnProbability" json:"rightTurnProbability"`
	Back      *float64 `yaml:"backProbability" json:"backProbability"`
	LeftTurn  *float64 `yaml:"leftTurnProbability" json:"leftTurnProbability"`
}

// RobotConfig names the robot and the topics its events arrive on.
type RobotConfig struct {
	ID           string `yaml:"id" json:"id"`
	MapTopic     string `yaml:"mapTopic" json:"mapTopic"`
	CommandTopic string `yaml:"commandTopic" json:"commandTopic"`
	ScanTopic    string `yaml:"scanTopic" json:"scanTopic"`
}

// MQTTConfig holds MQTT connection settings.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config represents the full configuration file.
type Config struct {
	MQTT   MQTTConfig   `yaml:"mqtt" json:"mqtt"`
	Robot  RobotConfig  `yaml:"robot" json:"robot"`
	Motion MotionParams `yaml:"motion" json:"motion"`
}
