package model

// Session identifies one F1 track session (practice, qualifying, sprint, race).
// Date values are kept as the raw upstream ISO strings and parsed lazily; the
// upstream is not consistent enough to normalize them at decode time.
type Session struct {
	Key         int    `json:"session_key"`
	MeetingKey  int    `json:"meeting_key"`
	Status      string `json:"session_status"`
	DateStart   string `json:"date_start"`
	DateEnd     string `json:"date_end"`
	MeetingName string `json:"meeting_name"`
	CircuitName string `json:"circuit_short_name"`
	SessionName string `json:"session_name"`
	CountryName string `json:"country_name"`
	LapCount    int    `json:"lap_count,omitempty"` // 0 = unknown
	Year        int    `json:"year,omitempty"`
}

// PositionEntry is one row of the timing provider's position feed.
type PositionEntry struct {
	DriverNumber int `json:"driver_number"`
	Position     int `json:"position"`
	Lap          int `json:"lap,omitempty"` // 0 = unknown
}

// DriverSnapshot is the fully resolved per-driver state for one render pass.
// Snapshots are rebuilt wholesale every poll cycle, never mutated in place.
type DriverSnapshot struct {
	Number   int
	Code     string
	Position int
	LastLap  string // M:SS.mmm
	Tyre     TyreCompound
	Gap      string
	Lap      int // 0 = unknown
	Retired  bool
}

// FastestLap describes the globally fastest lap of the current snapshot.
type FastestLap struct {
	DriverNumber int
	LapTime      string
}

// SessionResult is one row of the timing provider's session result feed.
type SessionResult struct {
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Status       string `json:"status"`
}

// Standing is one row of the championship standings.
type Standing struct {
	Position string
	Points   string
	Code     string
	Number   int // 0 = unknown
	Team     string
}

// RaceMeeting describes one race of the season table.
type RaceMeeting struct {
	MeetingName string
	Locality    string
	Country     string
	CircuitID   string
	Round       string
	Season      string
	DateStart   string // ISO timestamp of the race start
}

// ScheduleSession is one session of a race weekend schedule.
type ScheduleSession struct {
	Name      string
	DateStart string
}

// Weekend combines meeting info with its session schedule.
type Weekend struct {
	MeetingName string
	CircuitName string
	CountryName string
	Sessions    []ScheduleSession
}

// SummaryRow is one podium row of a session summary.
type SummaryRow struct {
	Position int
	Code     string
	Time     string
}

// SessionSummary holds the classification of the most recent finished session.
type SessionSummary struct {
	MeetingName   string
	SessionName   string
	Top3          []SummaryRow
	FastestDriver string
	FastestTime   string
	IsRace        bool
}

// CircuitHistory aggregates results of the recent races on one circuit.
type CircuitHistory struct {
	Winners     []string // "VER (2024)" style entries, most recent first
	PoleSitter  string
	PoleTime    string
	FastestCode string
	FastestTime string
}
