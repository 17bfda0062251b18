package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, msg Envelope) Envelope {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, msg))
	got, err := NewReader(&buf).ReadMessage()
	require.NoError(t, err)
	return got
}

func TestCodecRoundTripEveryVariant(t *testing.T) {
	winner := 2
	cases := []Envelope{
		SetDisplayName("Ada"),
		IsReady(),
		Heartbeat(),
		RaiseTo(500),
		Fold(),
		Pass(),
		AwaitingPlayer(),
		GameEnd(&winner),
		GameEnd(nil),
		{
			Type:                TypeGameState,
			PersonalCards:       HoleCards{3, 17},
			PersonalID:          1,
			MiddleCards:         []uint8{1, 2, 3},
			PlayerNames:         []string{"Ada", "Grace"},
			PlayerCards:         []*HoleCards{{1, 2}, nil},
			PlayerBettingAmount: []uint64{10, 20},
			PlayerMoney:         []uint64{990, 980},
			PlayerHasFolded:     []bool{false, false},
			PlayerIsOut:         []bool{false, false},
			RoundNumber:         2,
			IsStarted:           true,
			HandWinner:          -1,
			IsShowdown:          false,
		},
		{
			// Lobby-phase game_state: no hand dealt yet, so personal_cards
			// is the zero pair rather than an omitted/null field.
			Type:        TypeGameState,
			PersonalID:  0,
			PlayerCards: []*HoleCards{nil},
			IsStarted:   false,
			HandWinner:  -1,
		},
	}

	for _, msg := range cases {
		got := roundTrip(t, msg)
		require.Equal(t, msg, got)
	}
}

func TestFramingMultipleMessagesInOneBuffer(t *testing.T) {
	var buf bytes.Buffer
	sent := []Envelope{IsReady(), Heartbeat(), Fold(), RaiseTo(25)}
	for _, msg := range sent {
		require.NoError(t, WriteTo(&buf, msg))
	}

	r := NewReader(&buf)
	for _, want := range sent {
		got, err := r.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestReaderRejectsMalformedLengthPrefix(t *testing.T) {
	r := NewReader(bytes.NewBufferString("notanumber:{}"))
	_, err := r.ReadMessage()
	require.Error(t, err)
}

func TestReaderRejectsBadJSON(t *testing.T) {
	body := "{not json}"
	frame := []byte("10:" + body)
	r := NewReader(bytes.NewReader(frame))
	_, err := r.ReadMessage()
	require.Error(t, err)
}

func TestReaderRejectsOversizedFrame(t *testing.T) {
	r := NewReader(bytes.NewBufferString("99999999999:{}"))
	_, err := r.ReadMessage()
	require.ErrorIs(t, err, ErrFrameTooLarge)
}
