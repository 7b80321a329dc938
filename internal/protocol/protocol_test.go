// internal/protocol/protocol_test.go
package protocol

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/lobby"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequest(t *testing.T) {
	blue := models.ColorBlue
	roomID := int64(3)
	tests := []struct {
		method  Method
		payload string
		want    Request
	}{
		{MethodCreateRoom, `{"password":"ABCDE","maxPlayers":3,"allowStacking":true}`,
			CreateRoom{Password: "ABCDE", MaxPlayers: 3, AllowStacking: true}},
		{MethodJoinRoom, `{"roomId":3}`, JoinRoom{RoomID: &roomID}},
		{MethodJoinRoom, `{"password":"ABCDE","username":"bob"}`, JoinRoom{Password: "ABCDE", Username: "bob"}},
		{MethodLeaveRoom, `{"roomId":3}`, LeaveRoom{RoomID: 3}},
		{MethodStartGame, `{"roomId":3}`, StartGame{RoomID: 3}},
		{MethodPlayCard, `{"roomId":3,"cardIndex":2,"chosenColor":"BLUE"}`, PlayCard{RoomID: 3, CardIndex: 2, ChosenColor: &blue}},
		{MethodPlayCard, `{"roomId":3,"cardIndex":0}`, PlayCard{RoomID: 3}},
		{MethodDrawCard, `{"roomId":3}`, DrawCard{RoomID: 3}},
		{MethodChooseColor, `{"roomId":3,"chosenColor":"BLUE"}`, ChooseColor{RoomID: 3, ChosenColor: blue}},
		{MethodSayUno, `{"roomId":3}`, SayUno{RoomID: 3}},
		{MethodChat, `{"roomId":3,"text":"hi"}`, Chat{RoomID: 3, Text: "hi"}},
		{MethodGetRooms, ``, GetRooms{}},
		{MethodPing, `{}`, Ping{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			msg := Message{ID: 1, Version: Version, Method: tt.method}
			if tt.payload != "" {
				msg.Payload = []byte(tt.payload)
			}
			got, err := DecodeRequest(msg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	_, err := DecodeRequest(Message{Method: "FLY"})
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = DecodeRequest(Message{Method: MethodGameState})
	assert.ErrorIs(t, err, ErrUnknownMethod, "server-to-client methods are not requests")

	_, err = DecodeRequest(Message{Method: MethodPlayCard, Payload: []byte(`{"cardIndex":"x"}`)})
	assert.ErrorIs(t, err, ErrBadPayload)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrapped: %w", game.ErrNotYourTurn), CodeNotYourTurn},
		{game.ErrIllegalMove, CodeIllegalMove},
		{game.ErrDeckExhausted, CodeDeckExhausted},
		{lobby.ErrRoomFull, CodeRoomFull},
		{lobby.ErrPermissionDenied, CodePermissionDenied},
		{ErrUnknownMethod, CodeUnknownMethod},
		{io.ErrUnexpectedEOF, CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorCode(tt.err), tt.err.Error())
	}

	p := ErrorPayload(lobby.ErrInvalidPassword)
	assert.Equal(t, Error{Message: "invalid room password", Code: CodeInvalidPassword}, p)
}

func TestReplySetsReplyTo(t *testing.T) {
	msg, err := Reply(41, MethodOK, Ok{Message: "done"})
	require.NoError(t, err)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, int64(41), *msg.ReplyTo)
	assert.Equal(t, Version, msg.Version)
	assert.JSONEq(t, `{"message":"done"}`, string(msg.Payload))

	b, err := NewMessage(MethodGameState, nil)
	require.NoError(t, err)
	assert.Nil(t, b.ReplyTo)
}

func TestCodecRoundTripOverStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	first, err := NewMessage(MethodPing, Ping{})
	require.NoError(t, err)
	first.ID = 1
	second, err := Reply(1, MethodPong, Pong{Message: "pong"})
	require.NoError(t, err)
	second.ID = 2

	require.NoError(t, enc.Encode(first))
	require.NoError(t, enc.Encode(second))
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	dec := NewDecoder(&buf)
	got, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, MethodPing, got.Method)
	got, err = dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, int64(1), *got.ReplyTo)

	_, err = dec.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoderSkipsBlankLinesAndRejectsGarbage(t *testing.T) {
	dec := NewDecoder(strings.NewReader("\n  \n{\"id\":7,\"method\":\"PING\"}\nnot json\n"))
	msg, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)

	_, err = dec.Decode()
	assert.ErrorIs(t, err, ErrBadFrame)
}

func TestDecoderRejectsOversizedFrame(t *testing.T) {
	line := `{"id":1,"method":"CHAT","payload":{"text":"` + strings.Repeat("a", MaxFrameSize) + `"}}` + "\n"
	_, err := NewDecoder(strings.NewReader(line)).Decode()
	assert.ErrorIs(t, err, ErrBadFrame)
}
