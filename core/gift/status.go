package gift

// Direction tells the projection which side of a gift the viewer is on.
// An unlocked, unopened gift reads "ready" to its sender but "claimable"
// to its recipient.
type Direction uint8

const (
	DirectionSent Direction = iota
	DirectionReceived
)

func (d Direction) String() string {
	if d == DirectionSent {
		return "sent"
	}
	return "received"
}

// Status is the derived display state of a gift. It is a pure function of
// the public fields plus the current time; the decrypted-contents flags are
// session-local and do not participate.
type Status uint8

const (
	StatusLocked Status = iota
	StatusReady
	StatusClaimable
	StatusOpened
	StatusClaimed
)

func (s Status) String() string {
	switch s {
	case StatusLocked:
		return "Locked"
	case StatusReady:
		return "Ready"
	case StatusClaimable:
		return "Claimable"
	case StatusOpened:
		return "Opened"
	case StatusClaimed:
		return "Claimed"
	default:
		return "Unknown"
	}
}

// StatusAt derives the gift's status at the given time for the given viewer.
func (g *Gift) StatusAt(now uint64, dir Direction) Status {
	switch {
	case g.Claimed:
		return StatusClaimed
	case g.Opened:
		return StatusOpened
	case g.Openable(now):
		if dir == DirectionSent {
			return StatusReady
		}
		return StatusClaimable
	default:
		return StatusLocked
	}
}
