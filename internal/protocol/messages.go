package protocol

// HelloMsg is the first client message on a fresh connection.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	Skin            string `json:"skin,omitempty"`

	Capabilities Capabilities `json:"capabilities"`
}

type Capabilities struct {
	MaxQueue    int  `json:"max_queue,omitempty"`
	WantAnimals bool `json:"want_animals,omitempty"`
}

// WelcomeMsg answers HELLO with everything a client needs to generate the
// identical world locally and join the edit stream at the right sequence.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        string `json:"player_id"`

	WorldParams WorldParams `json:"world_params"`
	EditSeq     uint64      `json:"edit_seq"`
}

type WorldParams struct {
	Seed       int32  `json:"seed"`
	WorldType  string `json:"world_type"`
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  int    `json:"chunk_size"`
	Height     int    `json:"height"`
	SeaLevel   int    `json:"sea_level"`
}

// EditEntry is one block write. Block accepts a palette id or a block name;
// Resolve settles it to an id.
type EditEntry struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Z     int `json:"z"`
	Block any `json:"block"`
}

// EditBatchMsg carries block edits in either direction. Outbound batches set
// Author to the originating player so clients can skip their own echoes; Seq
// is the world edit sequence of the last edit in the batch.
type EditBatchMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Author          string      `json:"author,omitempty"`
	Seq             uint64      `json:"seq,omitempty"`
	Edits           []EditEntry `json:"edits"`
}

// PoseMsg is a client pose update; host relays all poses via PlayersMsg.
type PoseMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Z               float64 `json:"z"`
	Yaw             float64 `json:"yaw"`
	Pitch           float64 `json:"pitch"`
}

type PlayerEntry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Skin  string  `json:"skin,omitempty"`
}

type PlayersMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Players         []PlayerEntry `json:"players"`
}

type AnimalEntry struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	Yaw  float64 `json:"yaw"`
}

// AnimalsMsg is host-authoritative: only the session host sends it, and the
// server relays it to everyone else unmodified.
type AnimalsMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Tick            uint64        `json:"tick"`
	Animals         []AnimalEntry `json:"animals"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

func NewError(code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, ProtocolVersion: Version, Code: code, Message: msg}
}
