package websocket

import (
	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	"github.com/iamasit07/connect4-engine/internal/service/turn"
)

// ClientMessage is anything a browser sends. Only the fields of Type are read.
type ClientMessage struct {
	Type       string `json:"type"`
	Mode       string `json:"mode,omitempty"`
	Opening    string `json:"opening,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Column     int    `json:"column"`
	Row        int    `json:"row"`
	Generation uint64 `json:"generation"`
	Paused     bool   `json:"paused"`
	Ticket     string `json:"ticket,omitempty"`
}

type ServerMessage struct {
	Type          string            `json:"type"`
	SessionID     string            `json:"sessionId,omitempty"`
	Ticket        string            `json:"ticket,omitempty"`
	Generation    uint64            `json:"generation,omitempty"`
	Players       *[2]domain.Player `json:"players,omitempty"`
	CurrentPlayer *domain.Player    `json:"currentPlayer,omitempty"`
	Player        *domain.Player    `json:"player,omitempty"`
	AI            bool              `json:"ai,omitempty"`
	Row           *int              `json:"row,omitempty"`
	Column        *int              `json:"column,omitempty"`
	Color         domain.Color      `json:"color,omitempty"`
	Name          string            `json:"name,omitempty"`
	Result        domain.ResultKind `json:"result,omitempty"`
	Winner        domain.Color      `json:"winner,omitempty"`
	Message       string            `json:"message,omitempty"`
	Paused        *bool             `json:"paused,omitempty"`
	Snapshot      *game.Snapshot    `json:"snapshot,omitempty"`
}

const (
	msgStartGame   = "start_game"
	msgDropColumn  = "drop_column"
	msgDiskSettled = "disk_settled"
	msgRestartGame = "restart_game"
	msgStopGame    = "stop_game"
	msgSetPaused   = "set_paused"
	msgResume      = "resume"

	msgResumed = "resumed"
	msgError   = "error"
)

func errorMessage(message string) ServerMessage {
	return ServerMessage{Type: msgError, Message: message}
}

// eventMessage translates a coordinator event into its wire form.
func eventMessage(ev turn.Event) ServerMessage {
	msg := ServerMessage{Type: string(ev.Type), Generation: ev.Generation}
	player := ev.Player

	switch ev.Type {
	case turn.EventGameStarted, turn.EventTurnChanged:
		msg.CurrentPlayer = &player
	case turn.EventMoveRequested:
		msg.Player = &player
		msg.AI = player.IsAI()
	case turn.EventDiskPlaced:
		row, column := ev.Row, ev.Column
		msg.Row, msg.Column = &row, &column
		msg.Color = player.Color
	case turn.EventColumnFull:
		column := ev.Column
		msg.Column = &column
		msg.Player = &player
	case turn.EventCue:
		msg.Name = ev.Cue
	case turn.EventGameOver:
		msg.Result = ev.Result.Kind
		msg.Winner = ev.Result.Winner
		msg.Message = ev.Message
	case turn.EventPaused:
		paused := ev.Paused
		msg.Paused = &paused
	}
	return msg
}
