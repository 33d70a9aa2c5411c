package protocol

import "fmt"

// NavOp is a navigation command sent from the controller to the client.
type NavOp uint8

const (
	NavPush      NavOp = 0x01 // Append a history entry for URL
	NavReplace   NavOp = 0x02 // Overwrite the current entry with URL
	NavBack      NavOp = 0x03 // history.back()
	NavForward   NavOp = 0x04 // history.forward()
	NavScrollTop NavOp = 0x05 // Scroll viewport to origin
)

// String returns the string representation of the navigation op.
func (op NavOp) String() string {
	switch op {
	case NavPush:
		return "Push"
	case NavReplace:
		return "Replace"
	case NavBack:
		return "Back"
	case NavForward:
		return "Forward"
	case NavScrollTop:
		return "ScrollTop"
	default:
		return "Unknown"
	}
}

// NavMessage is the payload of a FrameNav frame. URL is empty for ops
// that carry no target (Back, Forward, ScrollTop).
type NavMessage struct {
	Op  NavOp
	URL string
}

// EncodeNav encodes a navigation message payload.
func EncodeNav(m *NavMessage) []byte {
	e := NewEncoder()
	e.WriteByte(byte(m.Op))
	e.WriteString(m.URL)
	return e.Bytes()
}

// DecodeNav decodes a navigation message payload.
func DecodeNav(payload []byte) (*NavMessage, error) {
	d := NewDecoder(payload)

	op, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if op == 0 || op > byte(NavScrollTop) {
		return nil, fmt.Errorf("protocol: unknown nav op 0x%02x", op)
	}

	rawURL, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	return &NavMessage{Op: NavOp(op), URL: rawURL}, nil
}

// LocationKind classifies a client → server location message.
type LocationKind uint8

const (
	// LocationReport carries the client's current URL. Sent once right
	// after connecting and in response to nothing else.
	LocationReport LocationKind = 0x01

	// LocationTraversal signals the user moved within history
	// (back/forward). Carries the URL after the traversal.
	LocationTraversal LocationKind = 0x02

	// LocationHashChange signals only the fragment changed. Carries
	// the full URL after the change.
	LocationHashChange LocationKind = 0x03
)

// String returns the string representation of the location kind.
func (k LocationKind) String() string {
	switch k {
	case LocationReport:
		return "Report"
	case LocationTraversal:
		return "Traversal"
	case LocationHashChange:
		return "HashChange"
	default:
		return "Unknown"
	}
}

// LocationMessage is the payload of a FrameLocation frame.
type LocationMessage struct {
	Kind LocationKind
	URL  string
}

// EncodeLocation encodes a location message payload.
func EncodeLocation(m *LocationMessage) []byte {
	e := NewEncoder()
	e.WriteByte(byte(m.Kind))
	e.WriteString(m.URL)
	return e.Bytes()
}

// DecodeLocation decodes a location message payload.
func DecodeLocation(payload []byte) (*LocationMessage, error) {
	d := NewDecoder(payload)

	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if kind == 0 || kind > byte(LocationHashChange) {
		return nil, fmt.Errorf("protocol: unknown location kind 0x%02x", kind)
	}

	rawURL, err := d.ReadString()
	if err != nil {
		return nil, err
	}

	return &LocationMessage{Kind: LocationKind(kind), URL: rawURL}, nil
}
