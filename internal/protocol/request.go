// internal/protocol/request.go
package protocol

import "fmt"

// Request is a decoded client command. The set of implementations is closed:
// only the payload types in this package satisfy it.
type Request interface {
	isRequest()
}

func (CreateRoom) isRequest()  {}
func (JoinRoom) isRequest()    {}
func (LeaveRoom) isRequest()   {}
func (StartGame) isRequest()   {}
func (PlayCard) isRequest()    {}
func (DrawCard) isRequest()    {}
func (ChooseColor) isRequest() {}
func (SayUno) isRequest()      {}
func (Chat) isRequest()        {}
func (GetRooms) isRequest()    {}
func (Ping) isRequest()        {}

// DecodeRequest turns an inbound envelope into its typed command.
// Server-to-client methods and unknown names fail with ErrUnknownMethod.
func DecodeRequest(msg Message) (Request, error) {
	var (
		req Request
		err error
	)
	switch msg.Method {
	case MethodCreateRoom:
		var p CreateRoom
		err = msg.DecodePayload(&p)
		req = p
	case MethodJoinRoom:
		var p JoinRoom
		err = msg.DecodePayload(&p)
		req = p
	case MethodLeaveRoom:
		var p LeaveRoom
		err = msg.DecodePayload(&p)
		req = p
	case MethodStartGame:
		var p StartGame
		err = msg.DecodePayload(&p)
		req = p
	case MethodPlayCard:
		var p PlayCard
		err = msg.DecodePayload(&p)
		req = p
	case MethodDrawCard:
		var p DrawCard
		err = msg.DecodePayload(&p)
		req = p
	case MethodChooseColor:
		var p ChooseColor
		err = msg.DecodePayload(&p)
		req = p
	case MethodSayUno:
		var p SayUno
		err = msg.DecodePayload(&p)
		req = p
	case MethodChat:
		var p Chat
		err = msg.DecodePayload(&p)
		req = p
	case MethodGetRooms:
		req = GetRooms{}
	case MethodPing:
		req = Ping{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, msg.Method)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}
