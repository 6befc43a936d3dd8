package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var eventsJSON bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Stream structure events from the server",
	Long: `Events subscribes to the server's event stream and prints warning,
critical and destruction notifications for your structures as they
happen. Press Ctrl-C to stop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return streamEvents(ctx)
	},
}

// structureEvent mirrors the event payload on the SSE stream.
type structureEvent struct {
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Owner         string    `json:"owner"`
	StructureID   string    `json:"structureId"`
	StructureType string    `json:"structureType"`
	Health        float64   `json:"health"`
}

func streamEvents(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.ServerURL+"/api/v1/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// The stream stays open until cancelled, so no client timeout here.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error.Message != "" {
			return &errResp.Error
		}
		return fmt.Errorf("HTTP %d from event stream", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	var eventName string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			printEvent(eventName, data)
		case line == "":
			eventName = ""
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("event stream closed: %w", err)
	}
	return nil
}

func printEvent(name, data string) {
	if eventsJSON {
		fmt.Println(data)
		return
	}

	if name == "connected" {
		fmt.Println("Connected to event stream")
		return
	}

	var ev structureEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		fmt.Printf("[%s] %s\n", name, data)
		return
	}

	stamp := ev.Timestamp.Local().Format("15:04:05")
	switch name {
	case "structure_warning":
		fmt.Printf("%s WARNING  %s (%s) health %.1f\n", stamp, ev.StructureID, ev.StructureType, ev.Health)
	case "structure_critical":
		fmt.Printf("%s CRITICAL %s (%s) health %.1f\n", stamp, ev.StructureID, ev.StructureType, ev.Health)
	case "structure_destroyed":
		fmt.Printf("%s DESTROYED %s (%s)\n", stamp, ev.StructureID, ev.StructureType)
	default:
		fmt.Printf("%s %s %s\n", stamp, name, data)
	}
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "print raw event JSON, one per line")

	rootCmd.AddCommand(eventsCmd)
}
