package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case ConnectResult:
		o.printConnectResult(v)
	case DisconnectResult:
		o.printDisconnectResult(v)
	case Structure:
		o.printStructure(v)
	case StructureList:
		o.printStructureList(v)
	case DamageResult:
		o.printDamageResult(v)
	case DecayResult:
		o.printDecayResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ConnectResult combines player, token and restored structure count
type ConnectResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
	Restored     int    `json:"restored"`
}

// DisconnectResult reports the closed session
type DisconnectResult struct {
	PlayerID string `json:"playerId"`
	Saved    bool   `json:"saved"`
}

// Structure response type
type Structure struct {
	ID            string      `json:"id"`
	Owner         string      `json:"owner"`
	StructureType string      `json:"structureType"`
	Material      string      `json:"material"`
	Health        float64     `json:"health"`
	MaxHealth     float64     `json:"maxHealth"`
	Exposed       bool        `json:"exposed"`
	Transform     [12]float64 `json:"transform"`
	LastDamageAt  *time.Time  `json:"lastDamageAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// StructureList response type
type StructureList struct {
	Structures []Structure `json:"structures"`
	Count      int         `json:"count"`
}

// BuildResult response type
type BuildResult struct {
	Structure Structure `json:"structure"`
}

// RepairResult response type
type RepairResult struct {
	Structure Structure `json:"structure"`
}

// DamageResult response type
type DamageResult struct {
	StructureID string  `json:"structureId"`
	Health      float64 `json:"health"`
	Destroyed   bool    `json:"destroyed"`
}

// DecayResult response type
type DecayResult struct {
	Enabled bool `json:"enabled"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
}

func (o *Output) printConnectResult(c ConnectResult) {
	o.printPlayer(c.Player)
	fmt.Printf("Restored structures: %d\n", c.Restored)
	fmt.Printf("Token: %s\n", c.SessionToken)
}

func (o *Output) printDisconnectResult(d DisconnectResult) {
	fmt.Printf("Disconnected: %s\n", d.PlayerID)
	if d.Saved {
		fmt.Println("Structures saved")
	}
}

func (o *Output) printStructure(s Structure) {
	fmt.Printf("Structure: %s\n", s.ID)
	fmt.Printf("Owner: %s\n", s.Owner)
	fmt.Printf("Type: %s (%s)\n", s.StructureType, s.Material)
	fmt.Printf("Health: %.1f / %.1f\n", s.Health, s.MaxHealth)
	fmt.Printf("Exposed: %s\n", yesNo(s.Exposed))
	fmt.Printf("Position: (%.1f, %.1f, %.1f)\n", s.Transform[3], s.Transform[7], s.Transform[11])
	if s.LastDamageAt != nil {
		fmt.Printf("Last damage: %s\n", s.LastDamageAt.Format(time.RFC3339))
	}
}

func (o *Output) printStructureList(l StructureList) {
	fmt.Printf("Structures (%d):\n", l.Count)
	for _, s := range l.Structures {
		marker := " "
		if s.Exposed {
			marker = "*"
		}
		fmt.Printf("  %s %-12s %-6s %-6s %6.1f/%.1f  (%.1f, %.1f, %.1f)\n",
			marker, s.ID, s.StructureType, s.Material, s.Health, s.MaxHealth,
			s.Transform[3], s.Transform[7], s.Transform[11])
	}
	if l.Count > 0 {
		fmt.Println("  * = exposed to sunlight")
	}
}

func (o *Output) printDamageResult(d DamageResult) {
	if d.Destroyed {
		fmt.Printf("Structure %s destroyed\n", d.StructureID)
		return
	}
	fmt.Printf("Structure %s damaged, health now %.1f\n", d.StructureID, d.Health)
}

func (o *Output) printDecayResult(d DecayResult) {
	state := "disabled"
	if d.Enabled {
		state = "enabled"
	}
	fmt.Printf("Environmental decay: %s\n", state)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
