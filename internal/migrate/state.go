package migrate

import "errors"

// ErrAlreadyRun reports a second Run call on a single-attempt role.
var ErrAlreadyRun = errors.New("migration attempt already run")

// State tracks one migration attempt through its protocol steps. The
// import role moves Idle → Announced → AwaitingCounterpart → Received →
// Opened; the export role moves Idle → AnnouncementLoaded → Sealed.
// Either role ends in Failed when a step errors.
type State int

const (
	StateIdle State = iota
	StateAnnounced
	StateAwaitingCounterpart
	StateReceived
	StateOpened
	StateAnnouncementLoaded
	StateSealed
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateAnnounced:           "announced",
	StateAwaitingCounterpart: "awaiting-counterpart",
	StateReceived:            "received",
	StateOpened:              "opened",
	StateAnnouncementLoaded:  "announcement-loaded",
	StateSealed:              "sealed",
	StateFailed:              "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the attempt has finished, successfully or
// not.
func (s State) Terminal() bool {
	return s == StateOpened || s == StateSealed || s == StateFailed
}
