package turn

import (
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

type EventType string

const (
	EventGameStarted   EventType = "game_started"
	EventTurnChanged   EventType = "turn_changed"
	EventMoveRequested EventType = "move_requested"
	EventDiskPlaced    EventType = "disk_placed"
	EventColumnFull    EventType = "column_full"
	EventCue           EventType = "cue"
	EventGameOver      EventType = "game_over"
	EventPaused        EventType = "paused"
	EventStopped       EventType = "stopped"
)

// Audio and animation cues. The coordinator fires them and never waits on them.
const (
	CueRoundClick = "round_click"
	CueDiskInCell = "disk_in_cell"
	CueColumnFull = "column_full"
	CueVictory    = "victory"
)

// Event is what the presentation layer hears about. Only the fields that make
// sense for Type are set.
type Event struct {
	Type       EventType
	Generation uint64
	Player     domain.Player
	Row        int
	Column     int
	Result     domain.Result
	Message    string
	Cue        string
	Paused     bool
	Outcome    *Outcome
}

// Outcome is the finished match as it stood when game_over was emitted. Later
// restarts do not touch it.
type Outcome struct {
	Players   [2]domain.Player
	Opening   domain.Color
	Board     domain.Grid
	Moves     int
	StartedAt time.Time
}

type Listener interface {
	HandleEvent(ev Event)
}

type ListenerFunc func(ev Event)

func (f ListenerFunc) HandleEvent(ev Event) {
	f(ev)
}

// Scheduler runs an AI move task, now or later. A task that runs after the
// match moved on does nothing.
type Scheduler func(task func())

// Immediate runs the task on the spot.
func Immediate(task func()) {
	task()
}
