package websocket

import "encoding/json"

const (
	actionDrop  = "game:drop"
	actionMove  = "game:move"
	actionError = "error"
)

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type DropPayload struct {
	Column *int `json:"column"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
