package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
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
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case LeaderboardResult:
		o.printLeaderboard(v)
	case RankResult:
		o.printRank(v)
	case StatsResult:
		fmt.Fprintf(o.w, "Online: %d\nCached: %d\nClients: %d\n", v.Online, v.Cached, v.Clients)
	case Event:
		o.printEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank         int      `json:"rank"`
	ID           string   `json:"id"`
	DisplayName  string   `json:"displayName"`
	Money        float64  `json:"money"`
	CPS          float64  `json:"cps"`
	Upgrades     []string `json:"upgrades"`
	Playtime     int64    `json:"playtime"`
	TotalClicks  int64    `json:"totalClicks"`
	IsOnline     bool     `json:"isOnline"`
	Achievements int      `json:"achievements"`
}

// LeaderboardResult response type
type LeaderboardResult struct {
	Time    string             `json:"time"`
	Entries []LeaderboardEntry `json:"entries"`
}

// RankResult response type
type RankResult struct {
	ID          string   `json:"id"`
	Rank        int      `json:"rank"`
	Total       int      `json:"total"`
	Money       float64  `json:"money"`
	CPS         float64  `json:"cps"`
	Upgrades    []string `json:"upgrades"`
	TotalClicks int64    `json:"totalClicks"`
	Playtime    int64    `json:"playtime"`
}

// StatsResult response type
type StatsResult struct {
	Online  int `json:"online"`
	Cached  int `json:"cached"`
	Clients int `json:"clients"`
}

func (o *Output) printLeaderboard(l LeaderboardResult) {
	fmt.Fprintf(o.w, "Leaderboard (%s)\n", l.Time)
	if len(l.Entries) == 0 {
		fmt.Fprintln(o.w, "  no players yet")
		return
	}
	for _, e := range l.Entries {
		online := ""
		if e.IsOnline {
			online = " *"
		}
		fmt.Fprintf(o.w, "%3d. %-16s %14.0f coins %8.0f/s%s\n", e.Rank, e.DisplayName, e.Money, e.CPS, online)
	}
}

func (o *Output) printRank(r RankResult) {
	fmt.Fprintf(o.w, "Player: %s\n", r.ID)
	fmt.Fprintf(o.w, "Rank: %d of %d\n", r.Rank, r.Total)
	fmt.Fprintf(o.w, "Money: %.0f\n", r.Money)
	fmt.Fprintf(o.w, "CPS: %.0f\n", r.CPS)
	fmt.Fprintf(o.w, "Clicks: %d\n", r.TotalClicks)
	fmt.Fprintf(o.w, "Playtime: %ds\n", r.Playtime)
	if len(r.Upgrades) > 0 {
		fmt.Fprintf(o.w, "Upgrades: %s\n", strings.Join(r.Upgrades, ", "))
	}
}

func (o *Output) printEvent(e Event) {
	fmt.Fprintf(o.w, "[%s] %s: %s\n", e.Time.Format("15:04:05"), e.Type, string(e.Data))
}
