package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kwv/gridloc/localize"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	mqttMode   = flag.Bool("mqtt", false, "Run MQTT service mode for live localization")
	httpMode   = flag.Bool("http", false, "Enable HTTP server for belief images and pose")
	httpPort   = flag.Int("http-port", 8080, "HTTP server port (default 8080)")
	replayFile = flag.String("replay", "", "Replay a JSONL event log and exit")
	renderOut  = flag.String("render", "", "Write the final belief heatmap PNG after replay")
)

func main() {
	flag.Parse()
	fmt.Printf("gridloc version: %s\n", Version)

	config, err := localize.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v (looked at %s)", err, *configFile)
	}
	log.Printf("Loaded config from %s", *configFile)

	estimator, err := localize.NewEstimator(config.Motion)
	if err != nil {
		log.Fatalf("Failed to create estimator: %v", err)
	}

	if *replayFile != "" {
		runReplay(estimator)
		return
	}

	if *mqttMode || *httpMode {
		runService(config, estimator)
		return
	}

	fmt.Println("gridloc: histogram-filter localization service")
	fmt.Println("Use --mqtt to run the MQTT service mode")
	fmt.Println("Use --http to run the HTTP server mode")
	fmt.Println("Use --mqtt --http to run both together")
	fmt.Println("Use --replay=events.jsonl to replay a recorded event log")
	fmt.Println("\nConfiguration:")
	fmt.Println("  config.yaml - MQTT settings, robot topics, and motion probabilities")
}

// runReplay feeds a recorded event log to the estimator and prints the
// pose estimate after each applied scan.
func runReplay(estimator *localize.Estimator) {
	scans := 0
	var last *localize.BeliefSnapshot

	err := localize.ReplayFile(*replayFile, estimator, func(pose localize.Pose, snapshot *localize.BeliefSnapshot) {
		scans++
		fmt.Printf("scan %d: pose=(%d,%d) gen=%d\n", scans, pose.Col, pose.Row, snapshot.Generation)
		last = snapshot
	})
	if err != nil {
		log.Fatalf("Replay failed: %v", err)
	}

	prediction, consumed := estimator.Generations()
	fmt.Printf("Replay done: %d scans applied (prediction gen %d, consumed gen %d)\n", scans, prediction, consumed)

	if *renderOut != "" {
		grid := estimator.Grid()
		if grid == nil {
			log.Fatal("Cannot render: event log contained no map")
		}
		renderer := localize.NewHeatmapRenderer(grid)
		if err := renderer.SavePNG(*renderOut, last); err != nil {
			log.Fatalf("Error rendering belief heatmap: %v", err)
		}
		fmt.Printf("Created: %s\n", *renderOut)
	}
}

// runService starts the combined MQTT and/or HTTP service.
func runService(config *localize.Config, estimator *localize.Estimator) {
	fmt.Println("Starting gridloc service...")

	tracker := localize.NewStateTracker()

	var publisher *localize.Publisher
	var mqttClient *localize.MQTTClient

	handlers := localize.EventHandlers{
		OnMap: func(payload *localize.OccupancyPayload) {
			if err := estimator.LoadMap(payload.Width, payload.Height, payload.Data); err != nil {
				log.Printf("Error loading map: %v", err)
				return
			}
			tracker.SetMap(estimator.Grid())
		},
		OnCommand: func(symbol string) {
			if err := estimator.ApplyCommand(symbol); err != nil {
				if errors.Is(err, localize.ErrNoMap) {
					log.Printf("Command %q before map, ignored", symbol)
					return
				}
				log.Printf("Error applying command: %v", err)
			}
		},
		OnScan: func(scan localize.Scan) {
			pose, snapshot, err := estimator.ApplyScan(scan)
			if err != nil {
				if errors.Is(err, localize.ErrNoMap) || errors.Is(err, localize.ErrScanDiscarded) {
					log.Printf("Scan skipped: %v", err)
					return
				}
				log.Printf("Error applying scan: %v", err)
				return
			}

			tracker.UpdateBelief(snapshot)

			if publisher != nil {
				if err := publisher.PublishEstimate(pose, snapshot); err != nil {
					log.Printf("Error publishing estimate: %v", err)
				}
			}
		},
	}

	if *mqttMode {
		var err error
		mqttClient, err = localize.InitMQTT(config, handlers)
		if err != nil {
			log.Fatalf("Failed to initialize MQTT: %v", err)
		}
		if mqttClient == nil {
			log.Fatal("MQTT broker not configured in config.yaml")
		}

		publisher = localize.NewPublisher(mqttClient.GetClient(), config.Robot.ID)
		fmt.Println("MQTT estimate publisher initialized")
	}

	if *httpMode {
		httpServer := newHTTPServer(tracker)
		go func() {
			addr := fmt.Sprintf(":%d", *httpPort)
			fmt.Printf("HTTP server starting on %s\n", addr)
			if err := http.ListenAndServe(addr, httpServer); err != nil {
				log.Fatalf("HTTP server error: %v", err)
			}
		}()
	}

	fmt.Println("\nService Running")
	fmt.Println("===============")

	if *mqttMode {
		fmt.Println("\nMQTT:")
		fmt.Println("  Subscribed topics:")
		fmt.Printf("    - %s (map)\n", config.Robot.MapTopic)
		fmt.Printf("    - %s (commands)\n", config.Robot.CommandTopic)
		fmt.Printf("    - %s (scans)\n", config.Robot.ScanTopic)
		prefix := config.MQTT.PublishPrefix
		if prefix == "" {
			prefix = "gridloc"
		}
		fmt.Printf("  Publishing to: %s/%s/pose and %s/%s/belief\n",
			prefix, config.Robot.ID, prefix, config.Robot.ID)
	}

	if *httpMode {
		fmt.Printf("\nHTTP endpoints (port %d):\n", *httpPort)
		fmt.Println("  GET /health        - Health check")
		fmt.Println("  GET /pose          - Latest pose estimate")
		fmt.Println("  GET /belief.png    - Belief heatmap over the map")
		fmt.Println("  GET /belief.svg    - Belief heatmap as vector graphics")
		fmt.Println("  GET /track.geojson - Walls and pose track as GeoJSON")
	}

	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	fmt.Println("Service stopped")
}
