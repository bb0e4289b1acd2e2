package store

import "time"

// BuildRecord captures the outcome of one target's build.
type BuildRecord struct {
	Target    string    `json:"target"`
	Board     string    `json:"board"`
	Shield    string    `json:"shield,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Duration  string    `json:"duration"`
	Artifact  string    `json:"artifact,omitempty"`
	Pristine  bool      `json:"pristine,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// RunRecord summarizes one invocation of the build command.
type RunRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Targets   int       `json:"targets"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Duration  string    `json:"duration"`
	Group     string    `json:"group,omitempty"`
	Jobs      int       `json:"jobs,omitempty"`
}

// SerialLog tracks a serial monitor session.
type SerialLog struct {
	Port      string    `json:"port"`
	BaudRate  int       `json:"baud_rate"`
	Timestamp time.Time `json:"timestamp"`
	LogFile   string    `json:"log_file"`
}
