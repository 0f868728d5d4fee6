package entity

// MoveEvent tells the presentation layer about an accepted move.
type MoveEvent struct {
	GameID  string  `json:"game_id"`
	Kind    string  `json:"kind"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
	Player  *Player `json:"player"`
	Winner  *Player `json:"winner,omitempty"`
	Message string  `json:"message,omitempty"`
}
