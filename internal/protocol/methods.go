// internal/protocol/methods.go
package protocol

// Method names the operation a Message carries.
type Method string

const (
	MethodCreateRoom       Method = "CREATE_ROOM"
	MethodRoomCreated      Method = "ROOM_CREATED_SUCCESS"
	MethodJoinRoom         Method = "JOIN_ROOM_REQUEST"
	MethodJoinRoomResponse Method = "JOIN_ROOM_RESPONSE"
	MethodLeaveRoom        Method = "LEAVE_ROOM"
	MethodLobbyUpdate      Method = "LOBBY_UPDATE"
	MethodGetRooms         Method = "GET_ROOMS"
	MethodRoomsList        Method = "ROOMS_LIST"
	MethodStartGame        Method = "START_GAME"
	MethodGameState        Method = "GAME_STATE"
	MethodPlayerHandUpdate Method = "PLAYER_HAND_UPDATE"
	MethodPlayCard         Method = "PLAY_CARD"
	MethodDrawCard         Method = "DRAW_CARD"
	MethodChooseColor      Method = "CHOOSE_COLOR"
	MethodSayUno           Method = "SAY_UNO"
	MethodChat             Method = "CHAT"
	MethodPing             Method = "PING"
	MethodPong             Method = "PONG"
	MethodOK               Method = "OK"
	MethodError            Method = "ERROR"
)
