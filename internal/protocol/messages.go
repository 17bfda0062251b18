// Package protocol implements the wire protocol between a poker client and
// the server: a length-prefixed JSON frame format and the stable message
// taxonomy carried inside it.
package protocol

// Type identifies the payload carried by a frame. Wire names are stable.
type Type string

const (
	// Client -> Server
	TypeSetDisplayName Type = "set_display_name"
	TypeIsReady        Type = "is_ready"
	TypeHeartbeat      Type = "heartbeat"
	TypeResponse       Type = "response"

	// Internal, never sent over the wire but carried on the fan-in channel
	// when a reader observes the socket closing.
	TypeConnectionEnded Type = "connection_ended"

	// Server -> Client
	TypeAwaitingPlayer Type = "awaiting_player"
	TypeGameState      Type = "game_state"
	TypeGameEnd        Type = "game_end"
)

// ResponseAction is the action carried by a response message.
type ResponseAction string

const (
	ActionRaiseTo ResponseAction = "raise_to"
	ActionFold    ResponseAction = "fold"
	ActionPass    ResponseAction = "pass"
)

// HoleCards is a player's two-card hand on the wire; a nil *HoleCards
// renders as JSON null, matching player_cards: [[u8;2]|null].
type HoleCards [2]uint8

// Envelope is the outer shape every frame decodes into; Type selects how
// the remaining fields are interpreted. The set_display_name and response
// fields are omitted when empty; the game_state and game_end fields are
// always present in every encoded frame.
type Envelope struct {
	Type Type `json:"type"`

	// set_display_name
	PlayerName string `json:"player_name,omitempty"`

	// response
	Action ResponseAction `json:"action,omitempty"`
	Amount uint64         `json:"amount,omitempty"`

	// game_state. PersonalCards is always a concrete pair on the wire — it
	// defaults to the zero value {0,0} before a hand is dealt, never null;
	// only PlayerCards (other seats' revealed hands) is nullable.
	PersonalCards       HoleCards    `json:"personal_cards"`
	PersonalID          int          `json:"personal_id"`
	MiddleCards         []uint8      `json:"middle_cards"`
	PlayerNames         []string     `json:"player_names"`
	PlayerCards         []*HoleCards `json:"player_cards"`
	PlayerBettingAmount []uint64     `json:"player_betting_amount"`
	PlayerMoney         []uint64     `json:"player_money"`
	PlayerHasFolded     []bool       `json:"player_has_folded"`
	PlayerIsOut         []bool       `json:"player_is_out"`
	RoundNumber         int          `json:"round_number"`
	IsStarted           bool         `json:"is_started"`
	HandWinner          int8         `json:"hand_winner"`
	IsShowdown          bool         `json:"is_showdown"`

	// game_end
	Winner *int `json:"winner"`
}

// SetDisplayName builds a set_display_name frame.
func SetDisplayName(name string) Envelope {
	return Envelope{Type: TypeSetDisplayName, PlayerName: name}
}

// IsReady builds an is_ready frame.
func IsReady() Envelope { return Envelope{Type: TypeIsReady} }

// Heartbeat builds a heartbeat frame.
func Heartbeat() Envelope { return Envelope{Type: TypeHeartbeat} }

// RaiseTo builds a response frame requesting a raise to amount.
func RaiseTo(amount uint64) Envelope {
	return Envelope{Type: TypeResponse, Action: ActionRaiseTo, Amount: amount}
}

// Fold builds a response frame folding.
func Fold() Envelope { return Envelope{Type: TypeResponse, Action: ActionFold} }

// Pass builds a response frame calling/checking.
func Pass() Envelope { return Envelope{Type: TypeResponse, Action: ActionPass} }

// AwaitingPlayer builds an awaiting_player frame.
func AwaitingPlayer() Envelope { return Envelope{Type: TypeAwaitingPlayer} }

// GameEnd builds a game_end frame. winner is nil when no seat remains.
func GameEnd(winner *int) Envelope {
	return Envelope{Type: TypeGameEnd, Winner: winner}
}
