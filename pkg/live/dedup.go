package live

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Dedup tracks the event fingerprints already delivered to each chat. The
// per-chat sets grow for the lifetime of a commentary session and are cleared
// only on explicit stop; that unbounded-until-stop growth is accepted.
type Dedup struct {
	mu   sync.Mutex
	seen map[int64]map[string]struct{}
}

func NewDedup() *Dedup {
	return &Dedup{seen: make(map[int64]map[string]struct{})}
}

// IsNew reports whether the fingerprint was not yet delivered to the chat and
// marks it seen when so. Sets are never shared or intersected across chats.
func (d *Dedup) IsNew(chatID int64, fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	set, ok := d.seen[chatID]
	if !ok {
		set = make(map[string]struct{})
		d.seen[chatID] = set
	}
	if _, ok := set[fingerprint]; ok {
		return false
	}
	set[fingerprint] = struct{}{}
	return true
}

// Clear drops the seen set of one chat.
func (d *Dedup) Clear(chatID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, chatID)
}

// Fingerprint builds the canonical serialization of a raw event payload used
// as dedup key. encoding/json emits map keys in sorted order, which makes the
// serialization stable across polls.
func Fingerprint(payload map[string]any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%v", payload)
	}
	return string(data)
}

// DNFFingerprint is the dedicated fingerprint namespace for result-feed DNF
// notifications. It is deliberately distinct from the raw-payload namespace:
// a result-feed DNF and a race-control retirement for the same driver may
// both surface, each at most once.
func DNFFingerprint(driverNumber int) string {
	return fmt.Sprintf("dnf_%d", driverNumber)
}
