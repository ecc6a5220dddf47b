package domain

import (
	"strconv"
	"strings"
)

// Color identifies who occupies a cell. None marks an empty cell.
type Color int

const (
	None Color = 0
	Blue Color = 1
	Red  Color = 2
)

const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

func (c Color) String() string {
	switch c {
	case Blue:
		return "blue"
	case Red:
		return "red"
	default:
		return "none"
	}
}

// Opponent returns the other playing color. None has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Blue:
		return Red
	case Red:
		return Blue
	default:
		return None
	}
}

func (c Color) IsPlayer() bool {
	return c == Blue || c == Red
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "blue", "1":
		return Blue, nil
	case "red", "2":
		return Red, nil
	}
	return None, ErrInvalidColor
}

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	}
	return "", ErrInvalidDifficulty
}

var BotNames = map[Difficulty]string{
	Easy:   "Alice",
	Medium: "Bob",
	Hard:   "Charles",
}

func GetBotName(difficulty Difficulty) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

type GameMode string

const (
	PlayerVsPlayer     GameMode = "pvp"
	PlayerVsComputer   GameMode = "pvc"
	ComputerVsComputer GameMode = "cvc"
)

func ParseGameMode(s string) (GameMode, error) {
	switch m := GameMode(strings.ToLower(strings.TrimSpace(s))); m {
	case PlayerVsPlayer, PlayerVsComputer, ComputerVsComputer:
		return m, nil
	}
	return "", ErrInvalidMode
}

type Controller string

const (
	Human Controller = "human"
	AI    Controller = "ai"
)

// Player is one seat of a match: a color, the 1-based display index and who drives it.
type Player struct {
	Color      Color      `json:"color"`
	Index      int        `json:"index"`
	Controller Controller `json:"controller"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}

func (p Player) IsAI() bool {
	return p.Controller == AI
}

// Name is the seat label used in announcements, e.g. "Player 2". AI seats
// keep their index label; GetBotName gives their persona.
func (p Player) Name() string {
	return "Player " + strconv.Itoa(p.Index)
}

// ModeForPlayers is the inverse of PlayersForMode: the mode and AI difficulty
// that produce these seats.
func ModeForPlayers(players [2]Player) (GameMode, Difficulty) {
	switch {
	case players[0].IsAI() && players[1].IsAI():
		return ComputerVsComputer, players[0].Difficulty
	case players[0].IsAI():
		return PlayerVsComputer, players[0].Difficulty
	case players[1].IsAI():
		return PlayerVsComputer, players[1].Difficulty
	}
	return PlayerVsPlayer, ""
}

// PlayersForMode seats Blue as player 1 and Red as player 2.
func PlayersForMode(mode GameMode, difficulty Difficulty) ([2]Player, error) {
	blue := Player{Color: Blue, Index: 1, Controller: Human}
	red := Player{Color: Red, Index: 2, Controller: Human}

	switch mode {
	case PlayerVsPlayer:
	case PlayerVsComputer:
		red.Controller, red.Difficulty = AI, difficulty
	case ComputerVsComputer:
		blue.Controller, blue.Difficulty = AI, difficulty
		red.Controller, red.Difficulty = AI, difficulty
	default:
		return [2]Player{}, ErrInvalidMode
	}
	return [2]Player{blue, red}, nil
}

type ResultKind string

const (
	ResultNone ResultKind = "none"
	ResultWin  ResultKind = "win"
	ResultDraw ResultKind = "draw"
)

// Result is the terminal outcome of a match. Winner is None unless Kind is ResultWin.
type Result struct {
	Kind   ResultKind `json:"kind"`
	Winner Color      `json:"winner"`
}

func (r Result) IsTerminal() bool {
	return r.Kind == ResultWin || r.Kind == ResultDraw
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidColumn     Error = "column out of range"
	ErrInvalidRow        Error = "row out of range"
	ErrColumnFull        Error = "column is full"
	ErrNotAvailable      Error = "no available row"
	ErrInvalidColor      Error = "invalid player color"
	ErrGravity           Error = "cell is not the next available row"
	ErrNoLegalMove       Error = "no legal move"
	ErrSettleMismatch    Error = "settled disk does not match pending placement"
	ErrNoGame            Error = "no game in progress"
	ErrInvalidMode       Error = "invalid game mode"
	ErrInvalidDifficulty Error = "invalid difficulty"
)
