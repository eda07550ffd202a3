package websocket

// browsers cannot set headers on a websocket handshake, so the JWT travels
// in the query string
type ConnectParams struct {
	Token string `form:"token" binding:"required"`
}
