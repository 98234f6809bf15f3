package model

// EventKind tags a classified session event.
type EventKind int

const (
	EventGeneric EventKind = iota
	EventOvertake
	EventPitStop
	EventRetirement
)

func (k EventKind) String() string {
	switch k {
	case EventOvertake:
		return "overtake"
	case EventPitStop:
		return "pitstop"
	case EventRetirement:
		return "retirement"
	default:
		return "generic"
	}
}

// Event is the classified form of one raw upstream event payload. Generic is
// the explicit unclassified fallback and carries the raw text untouched.
type Event struct {
	Kind        EventKind
	Fingerprint string
	Type        string // upstream type tag, may be empty
	Text        string
	Attacker    int // overtake subject, 0 = unknown
	Defender    int // overtake object, 0 = unknown
	Driver      int // pit/retirement subject, 0 = unknown
	Lap         int // 0 = unknown
}
