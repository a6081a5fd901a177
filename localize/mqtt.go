package localize

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// EventHandlers receives decoded transport events. Handlers run on the
// MQTT client's callback goroutines; the estimator's own lock makes
// that safe.
type EventHandlers struct {
	OnMap     func(payload *OccupancyPayload)
	OnCommand func(symbol string)
	OnScan    func(scan Scan)
}

// MQTTClient manages the MQTT connection and the robot's subscriptions.
type MQTTClient struct {
	client      mqtt.Client
	config      *Config
	handlers    EventHandlers
	isConnected bool
	mu          sync.RWMutex
}

// InitMQTT initializes the MQTT client with the provided configuration.
// If neither the MQTT_BROKER env var nor the config sets a broker, MQTT
// is disabled and this returns nil.
func InitMQTT(config *Config, handlers EventHandlers) (*MQTTClient, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" && config != nil && config.MQTT.Broker != "" {
		broker = config.MQTT.Broker
	}

	if broker == "" {
		log.Println("MQTT disabled: MQTT_BROKER not set")
		return nil, nil
	}

	if config == nil || config.Robot.MapTopic == "" || config.Robot.CommandTopic == "" || config.Robot.ScanTopic == "" {
		return nil, fmt.Errorf("MQTT enabled but robot topics not configured")
	}

	client := &MQTTClient{
		config:   config,
		handlers: handlers,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" && config.MQTT.ClientID != "" {
		clientID = config.MQTT.ClientID
	}
	if clientID == "" {
		clientID = "gridloc"
	}
	opts.SetClientID(clientID)

	username := os.Getenv("MQTT_USERNAME")
	if username == "" && config.MQTT.Username != "" {
		username = config.MQTT.Username
	}
	if username != "" {
		opts.SetUsername(username)
		password := os.Getenv("MQTT_PASSWORD")
		if password == "" && config.MQTT.Password != "" {
			password = config.MQTT.Password
		}
		opts.SetPassword(password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(false) // Preserve subscriptions on reconnect
	opts.SetOrderMatters(true)  // Command/scan interleaving is significant

	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)
	opts.SetReconnectingHandler(client.onReconnecting)

	client.client = mqtt.NewClient(opts)

	// Connect asynchronously with retry
	go client.connectWithRetry()

	return client, nil
}

// connectWithRetry attempts to connect to the broker with exponential backoff.
func (c *MQTTClient) connectWithRetry() {
	retryDelay := 1 * time.Second
	maxRetryDelay := 60 * time.Second

	for {
		log.Println("Connecting to MQTT broker...")

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("Successfully connected to MQTT broker")
				c.setConnected(true)
				return
			}
			log.Printf("MQTT connection failed: %v", token.Error())
		} else {
			log.Println("MQTT connection timeout")
		}

		log.Printf("Retrying MQTT connection in %v...", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

// onConnect subscribes to the robot's map, command, and scan topics.
func (c *MQTTClient) onConnect(client mqtt.Client) {
	log.Println("MQTT connected, subscribing to robot topics...")
	c.setConnected(true)

	subscriptions := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{c.config.Robot.MapTopic, c.handleMapMessage},
		{c.config.Robot.CommandTopic, c.handleCommandMessage},
		{c.config.Robot.ScanTopic, c.handleScanMessage},
	}

	for _, sub := range subscriptions {
		log.Printf("Subscribing to %s for robot %s", sub.topic, c.config.Robot.ID)
		token := client.Subscribe(sub.topic, 0, sub.handler)

		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("Error subscribing to %s: %v", sub.topic, token.Error())
		} else {
			log.Printf("Successfully subscribed to %s", sub.topic)
		}
	}
}

// onConnectionLost is called when the MQTT connection is lost.
// Auto-reconnect is enabled, so this is typically a transient event.
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

// onReconnecting is called when the client attempts to reconnect.
func (c *MQTTClient) onReconnecting(client mqtt.Client, opts *mqtt.ClientOptions) {
	log.Println("MQTT reconnecting...")
}

func (c *MQTTClient) handleMapMessage(client mqtt.Client, msg mqtt.Message) {
	payload := msg.Payload()
	log.Printf("Received map data (topic: %s, size: %d bytes)", msg.Topic(), len(payload))

	occupancy, err := DecodeOccupancy(payload)
	if err != nil {
		log.Printf("Error decoding map payload: %v", err)
		return
	}
	if c.handlers.OnMap != nil {
		c.handlers.OnMap(occupancy)
	}
}

func (c *MQTTClient) handleCommandMessage(client mqtt.Client, msg mqtt.Message) {
	symbol, err := DecodeCommand(msg.Payload())
	if err != nil {
		log.Printf("Error decoding command payload: %v", err)
		return
	}
	if c.handlers.OnCommand != nil {
		c.handlers.OnCommand(symbol)
	}
}

func (c *MQTTClient) handleScanMessage(client mqtt.Client, msg mqtt.Message) {
	scan, err := DecodeScan(msg.Payload())
	if err != nil {
		log.Printf("Error decoding scan payload: %v", err)
		return
	}
	if c.handlers.OnScan != nil {
		c.handlers.OnScan(scan)
	}
}

// IsConnected returns true if the MQTT client is connected.
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// setConnected updates the connection status.
func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection.
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("Disconnecting from MQTT broker...")
		c.client.Disconnect(250) // 250ms quiesce time
		c.setConnected(false)
	}
}

// GetClient returns the underlying MQTT client for publishing.
func (c *MQTTClient) GetClient() mqtt.Client {
	return c.client
}

// newMQTTClientWithMock creates an MQTTClient with a provided
// mqtt.Client. This is used for testing with mock clients.
func newMQTTClientWithMock(client mqtt.Client, config *Config, handlers EventHandlers) *MQTTClient {
	return &MQTTClient{
		client:   client,
		config:   config,
		handlers: handlers,
	}
}
