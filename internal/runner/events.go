package runner

// SessionInfo: полезная нагрузка SessionStarted
type SessionInfo struct {
	World     string `json:"world"`
	Seed      int64  `json:"seed"`
	Generator string `json:"generator"`
	Entities  int    `json:"entities"`
}

// EntityInfo: полезная нагрузка EntitySpawned
type EntityInfo struct {
	Handle uint64  `json:"handle"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Focus  bool    `json:"focus"`
}

// TickInfo: полезная нагрузка TickReport и SessionStopped
type TickInfo struct {
	Tick     uint64  `json:"tick"`
	FocusX   float64 `json:"focusX"`
	FocusY   float64 `json:"focusY"`
	Chunks   int     `json:"chunks"`
	Entities int     `json:"entities"`
}
