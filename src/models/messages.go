package models

// -----------------------------------------------------------------------------
// Outbound WebSocket messages (Matches Python wire format exactly)
// -----------------------------------------------------------------------------

const (
	MsgTypePulse    = "pulse"
	MsgTypeSnapshot = "snapshot"
	MsgTypeResetAck = "reset_ack"
)

// MPulseMessage is pushed once per detected event.
type MPulseMessage struct {
	Type string  `json:"type"`
	TS   float64 `json:"ts"` // unix seconds
}

// MSnapshotMessage is pushed once per second and on subscribe.
// The snapshot fields are flattened next to "type".
type MSnapshotMessage struct {
	Type string `json:"type"`
	MSnapshot
}

// MResetAckMessage is pushed after a successful counter reset.
type MResetAckMessage struct {
	Type string `json:"type"`
}

// -----------------------------------------------------------------------------

func NewPulseMessage(ts float64) MPulseMessage {
	return MPulseMessage{Type: MsgTypePulse, TS: ts}
}

func NewSnapshotMessage(snap MSnapshot) MSnapshotMessage {
	return MSnapshotMessage{Type: MsgTypeSnapshot, MSnapshot: snap}
}

func NewResetAckMessage() MResetAckMessage {
	return MResetAckMessage{Type: MsgTypeResetAck}
}
