package entity

// Player is one of the two participants of a game. The engine never mutates it.
type Player struct {
	Color string `json:"color"`
}

func NewPlayer(color string) *Player {
	return &Player{Color: color}
}
