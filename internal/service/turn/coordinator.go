package turn

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

type State string

const (
	StateIdle           State = "idle"
	StateAwaitingMove   State = "awaiting_move"
	StateAwaitingSettle State = "awaiting_settle"
	StateEvaluating     State = "evaluating"
	StateTerminal       State = "terminal"
)

// MoveChooser picks a column for an AI player.
type MoveChooser interface {
	ChooseColumn(board *domain.Board, me domain.Color, difficulty domain.Difficulty) (int, error)
}

// Placement is a disk that is on the board but whose fall has not been
// confirmed by the presentation layer yet.
type Placement struct {
	Generation uint64       `json:"generation"`
	Row        int          `json:"row"`
	Column     int          `json:"column"`
	Color      domain.Color `json:"color"`
}

// Status is a consistent copy of the coordinator state.
type Status struct {
	State      State            `json:"state"`
	Generation uint64           `json:"generation"`
	Players    [2]domain.Player `json:"players"`
	Current    domain.Player    `json:"currentPlayer"`
	Paused     bool             `json:"paused"`
	Result     domain.Result    `json:"result"`
	Pending    *Placement       `json:"pending,omitempty"`
	Board      domain.Grid      `json:"board"`
	Moves      int              `json:"moves"`
}

type queued struct {
	event *Event
	task  func()
}

// Coordinator owns whose turn it is and lets exactly one disk be in flight.
// A disk is placed on the board as soon as its column is accepted; the turn
// only advances once NotifyDiskSettled confirms the same cell for the same
// generation. All state changes happen under mu. Events and AI tasks are
// queued while mu is held and delivered in order after it is released, so
// listeners may call back into the coordinator.
type Coordinator struct {
	mu       sync.Mutex
	board    *domain.Board
	chooser  MoveChooser
	schedule Scheduler

	players    [2]domain.Player
	started    bool
	current    int
	opener     int
	startedAt  time.Time
	state      State
	paused     bool
	generation uint64
	request    uint64
	pending    *Placement
	result     domain.Result

	listeners   map[int]Listener
	nextID      int
	queue       []queued
	dispatching bool
}

func NewCoordinator(board *domain.Board, chooser MoveChooser, schedule Scheduler) *Coordinator {
	if schedule == nil {
		schedule = Immediate
	}
	return &Coordinator{
		board:     board,
		chooser:   chooser,
		schedule:  schedule,
		state:     StateIdle,
		result:    domain.Result{Kind: domain.ResultNone},
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener and returns the function that removes it.
func (c *Coordinator) Subscribe(l Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Start begins a new match with the given seats; opening must be one of their colors.
func (c *Coordinator) Start(players [2]domain.Player, opening domain.Color) error {
	if err := validatePlayers(players); err != nil {
		return err
	}
	opener := -1
	for i, p := range players {
		if p.Color == opening {
			opener = i
		}
	}
	if opener < 0 {
		return fmt.Errorf("%w: opening color %s is not seated", domain.ErrInvalidColor, opening)
	}

	c.mu.Lock()
	defer c.release()

	c.players = players
	c.started = true
	c.reset(opener)
	return nil
}

// Restart rebuilds the board and replays the last Start. Any disk still
// waiting for its settle signal is forgotten.
func (c *Coordinator) Restart(opening domain.Color) error {
	c.mu.Lock()
	defer c.release()

	if !c.started {
		return domain.ErrNoGame
	}
	opener := c.indexOf(opening)
	if opener < 0 {
		return fmt.Errorf("%w: opening color %s is not seated", domain.ErrInvalidColor, opening)
	}
	c.reset(opener)
	return nil
}

// Stop abandons the match and returns to Idle.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.release()

	if c.state == StateIdle {
		return
	}
	c.generation++
	c.pending = nil
	c.board.Clear()
	c.state = StateIdle
	c.result = domain.Result{Kind: domain.ResultNone}
	c.emit(Event{Type: EventStopped})
}

// RequestColumnDrop is the human input path. It returns accepted=false
// without error when no human move is expected right now; a second click
// while a disk is falling is therefore a no-op.
func (c *Coordinator) RequestColumnDrop(column int) (Placement, bool, error) {
	if column < 0 || column >= domain.Columns {
		return Placement{}, false, fmt.Errorf("%w: %d", domain.ErrInvalidColumn, column)
	}

	c.mu.Lock()
	defer c.release()

	if c.state != StateAwaitingMove || c.players[c.current].IsAI() {
		return Placement{}, false, nil
	}
	return c.drop(column)
}

// NotifyDiskSettled is called by the presentation layer when the falling disk
// of the given generation comes to rest. Stale generations are ignored.
func (c *Coordinator) NotifyDiskSettled(generation uint64, row, column int) error {
	c.mu.Lock()
	defer c.release()

	if generation != c.generation {
		log.Printf("[TURN] Ignoring settle for stale generation %d (current %d)", generation, c.generation)
		return nil
	}
	if c.state != StateAwaitingSettle || c.pending == nil {
		return nil
	}
	if row != c.pending.Row || column != c.pending.Column {
		log.Printf("[TURN] Settle mismatch: got (%d, %d), pending (%d, %d) in generation %d",
			row, column, c.pending.Row, c.pending.Column, generation)
		return fmt.Errorf("%w: got (%d, %d), pending (%d, %d)",
			domain.ErrSettleMismatch, row, column, c.pending.Row, c.pending.Column)
	}

	c.evaluate()
	return nil
}

// SetPaused stops AI players from being asked for moves. Unpausing on an AI
// turn asks that AI again.
func (c *Coordinator) SetPaused(paused bool) {
	c.mu.Lock()
	defer c.release()

	if c.paused == paused {
		return
	}
	c.paused = paused
	c.emit(Event{Type: EventPaused, Paused: paused})

	if !paused && c.state == StateAwaitingMove && c.players[c.current].IsAI() {
		// A task scheduled before the pause must not fire on its old timer.
		c.request++
		c.scheduleAI()
	}
}

func (c *Coordinator) GetCurrentPlayer() (domain.Player, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started || c.state == StateIdle {
		return domain.Player{}, false
	}
	return c.players[c.current], true
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Coordinator) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Coordinator) Result() domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Coordinator) GetCell(row, column int) (domain.Color, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.GetCell(row, column)
}

func (c *Coordinator) IsColumnFull(column int) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.board.IsColumnFull(column)
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:      c.state,
		Generation: c.generation,
		Players:    c.players,
		Paused:     c.paused,
		Result:     c.result,
		Board:      c.board.Snapshot(),
		Moves:      c.board.MoveCount(),
	}
	if c.started && c.state != StateIdle {
		st.Current = c.players[c.current]
	}
	if c.pending != nil {
		p := *c.pending
		st.Pending = &p
	}
	return st
}

// reset must be called with mu held.
func (c *Coordinator) reset(opener int) {
	c.board.Clear()
	c.generation++
	c.pending = nil
	c.result = domain.Result{Kind: domain.ResultNone}
	c.current = opener
	c.opener = opener
	c.startedAt = time.Now()
	c.state = StateAwaitingMove

	log.Printf("[TURN] Match generation %d started, %s opens", c.generation, c.players[opener].Color)

	c.emit(Event{Type: EventGameStarted, Player: c.players[opener]})
	c.emit(Event{Type: EventTurnChanged, Player: c.players[opener]})
	c.requestMove()
}

func (c *Coordinator) requestMove() {
	p := c.players[c.current]
	c.request++
	c.emit(Event{Type: EventMoveRequested, Player: p})

	if p.IsAI() && !c.paused {
		c.scheduleAI()
	}
}

func (c *Coordinator) scheduleAI() {
	generation, request := c.generation, c.request
	c.queue = append(c.queue, queued{task: func() {
		c.playAI(generation, request)
	}})
}

func (c *Coordinator) playAI(generation, request uint64) {
	c.mu.Lock()
	defer c.release()

	if generation != c.generation || request != c.request {
		return
	}
	if c.state != StateAwaitingMove || c.paused {
		return
	}
	p := c.players[c.current]
	if !p.IsAI() {
		return
	}

	column, err := c.chooser.ChooseColumn(c.board, p.Color, p.Difficulty)
	if err != nil {
		log.Printf("[BOT] %s (%s) could not choose a column: %v", p.Color, p.Difficulty, err)
		return
	}
	if _, _, err := c.drop(column); err != nil {
		log.Printf("[BOT] %s chose column %d: %v", p.Color, column, err)
	}
}

// drop places the current player's disk and waits for it to settle.
func (c *Coordinator) drop(column int) (Placement, bool, error) {
	p := c.players[c.current]

	full, err := c.board.IsColumnFull(column)
	if err != nil {
		return Placement{}, false, err
	}
	if full {
		c.emit(Event{Type: EventCue, Cue: CueColumnFull})
		c.emit(Event{Type: EventColumnFull, Player: p, Column: column})
		return Placement{}, false, fmt.Errorf("%w: column %d", domain.ErrColumnFull, column)
	}

	row, err := c.board.Drop(column, p.Color)
	if err != nil {
		return Placement{}, false, err
	}

	c.pending = &Placement{Generation: c.generation, Row: row, Column: column, Color: p.Color}
	c.state = StateAwaitingSettle

	c.emit(Event{Type: EventCue, Cue: CueRoundClick})
	c.emit(Event{Type: EventDiskPlaced, Player: p, Row: row, Column: column})
	return *c.pending, true, nil
}

// evaluate runs win before draw for the settled disk.
func (c *Coordinator) evaluate() {
	c.state = StateEvaluating
	placed := *c.pending
	c.pending = nil
	p := c.players[c.current]

	c.emit(Event{Type: EventCue, Cue: CueDiskInCell, Player: p, Row: placed.Row, Column: placed.Column})

	if c.board.CheckWin(placed.Row, placed.Column, placed.Color) {
		c.result = domain.Result{Kind: domain.ResultWin, Winner: placed.Color}
		c.state = StateTerminal
		log.Printf("[TURN] %s wins generation %d at (%d, %d)", placed.Color, c.generation, placed.Row, placed.Column)

		c.emit(Event{Type: EventCue, Cue: CueVictory, Player: p})
		c.emit(Event{Type: EventGameOver, Player: p, Result: c.result,
			Message: p.Name() + " Wins!", Outcome: c.outcome()})
		return
	}

	if c.board.CheckDraw() {
		c.result = domain.Result{Kind: domain.ResultDraw}
		c.state = StateTerminal
		log.Printf("[TURN] Generation %d ended in a draw", c.generation)

		c.emit(Event{Type: EventGameOver, Result: c.result,
			Message: "It's a Draw!", Outcome: c.outcome()})
		return
	}

	c.current = (c.current + 1) % len(c.players)
	c.state = StateAwaitingMove
	c.emit(Event{Type: EventTurnChanged, Player: c.players[c.current]})
	c.requestMove()
}

// outcome must be called with mu held.
func (c *Coordinator) outcome() *Outcome {
	return &Outcome{
		Players:   c.players,
		Opening:   c.players[c.opener].Color,
		Board:     c.board.Snapshot(),
		Moves:     c.board.MoveCount(),
		StartedAt: c.startedAt,
	}
}

func (c *Coordinator) emit(ev Event) {
	if ev.Generation == 0 {
		ev.Generation = c.generation
	}
	c.queue = append(c.queue, queued{event: &ev})
}

// release delivers queued events and tasks in order and unlocks mu. The
// goroutine that finds the queue idle drains it; others just leave their
// items behind.
func (c *Coordinator) release() {
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true

	for len(c.queue) > 0 {
		item := c.queue[0]
		c.queue = c.queue[1:]

		var listeners []Listener
		if item.event != nil {
			listeners = make([]Listener, 0, len(c.listeners))
			for id := 0; id < c.nextID; id++ {
				if l, ok := c.listeners[id]; ok {
					listeners = append(listeners, l)
				}
			}
		}

		c.mu.Unlock()
		if item.event != nil {
			for _, l := range listeners {
				l.HandleEvent(*item.event)
			}
		} else {
			c.schedule(item.task)
		}
		c.mu.Lock()
	}

	c.dispatching = false
	c.mu.Unlock()
}

func (c *Coordinator) indexOf(color domain.Color) int {
	for i, p := range c.players {
		if p.Color == color {
			return i
		}
	}
	return -1
}

func validatePlayers(players [2]domain.Player) error {
	if !players[0].Color.IsPlayer() || !players[1].Color.IsPlayer() || players[0].Color == players[1].Color {
		return fmt.Errorf("%w: seats must be blue and red", domain.ErrInvalidColor)
	}
	for _, p := range players {
		if !p.IsAI() {
			continue
		}
		if _, err := domain.ParseDifficulty(string(p.Difficulty)); err != nil {
			return fmt.Errorf("%s: %w", p.Color, err)
		}
	}
	return nil
}
