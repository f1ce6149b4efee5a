package types

// Health is the periodic system monitor report.
type Health struct {
	UptimeS    int64  `json:"uptime_s"`
	Ticks      uint64 `json:"ticks"`
	Session    string `json:"session"`
	Goroutines int    `json:"goroutines"`
	TS         int64  `json:"ts_ms"`
}
