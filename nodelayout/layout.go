// Package nodelayout defines the fixed binary layout of a node record as it
// crosses the guest/host boundary. The layout is versioned and independent
// of either side's in-memory struct layout; both sides encode and decode
// through this package.
package nodelayout

import (
	"encoding/binary"
	"math"

	"github.com/websg-dev/websg-go/domain/entities"
	sdkerrors "github.com/websg-dev/websg-go/domain/errors"
)

// Version is the layout version implemented by this package. Guests report
// the version they were built against through the websg_layout_version export.
const Version = 1

// Field offsets of a version 1 record. All values are little-endian.
const (
	OffsetID          = 0
	OffsetNamePtr     = 4
	OffsetNameLen     = 8
	OffsetPosition    = 12
	OffsetScale       = 24
	OffsetQuaternion  = 36
	OffsetParent      = 52
	OffsetFirstChild  = 56
	OffsetNextSibling = 60
	OffsetPrevSibling = 64

	// Size is the total record size in bytes.
	Size = 68
)

// Record is the decoded form of a node record. The name is carried as a
// pointer and length into guest linear memory.
type Record struct {
	Position    [3]float32
	Scale       [3]float32
	Quaternion  [4]float32
	ID          uint32
	NamePtr     uint32
	NameLen     uint32
	Parent      uint32
	FirstChild  uint32
	NextSibling uint32
	PrevSibling uint32
}

// FromNode builds a record from n. The name pointer is left zero; the
// caller places the name bytes in guest memory and sets NamePtr/NameLen.
func FromNode(n entities.Node) Record {
	return Record{
		ID:          uint32(n.ID),
		Position:    n.Position,
		Scale:       n.Scale,
		Quaternion:  n.Quaternion,
		Parent:      uint32(n.Parent),
		FirstChild:  uint32(n.FirstChild),
		NextSibling: uint32(n.NextSibling),
		PrevSibling: uint32(n.PrevSibling),
	}
}

// Node converts the record to a node with the given name.
func (r Record) Node(name string) entities.Node {
	return entities.Node{
		ID:          entities.NodeID(r.ID),
		Name:        name,
		Position:    r.Position,
		Scale:       r.Scale,
		Quaternion:  r.Quaternion,
		Parent:      entities.NodeID(r.Parent),
		FirstChild:  entities.NodeID(r.FirstChild),
		NextSibling: entities.NodeID(r.NextSibling),
		PrevSibling: entities.NodeID(r.PrevSibling),
	}
}

// Encode returns the Size-byte encoding of r.
func Encode(r Record) []byte {
	buf := make([]byte, Size)
	EncodeInto(buf, r)
	return buf
}

// EncodeInto writes r into buf, which must be at least Size bytes.
func EncodeInto(buf []byte, r Record) {
	_ = buf[Size-1]
	le := binary.LittleEndian
	le.PutUint32(buf[OffsetID:], r.ID)
	le.PutUint32(buf[OffsetNamePtr:], r.NamePtr)
	le.PutUint32(buf[OffsetNameLen:], r.NameLen)
	putFloats(buf[OffsetPosition:], r.Position[:])
	putFloats(buf[OffsetScale:], r.Scale[:])
	putFloats(buf[OffsetQuaternion:], r.Quaternion[:])
	le.PutUint32(buf[OffsetParent:], r.Parent)
	le.PutUint32(buf[OffsetFirstChild:], r.FirstChild)
	le.PutUint32(buf[OffsetNextSibling:], r.NextSibling)
	le.PutUint32(buf[OffsetPrevSibling:], r.PrevSibling)
}

// Decode parses a record. Extra trailing bytes are rejected so that a
// caller reading with the wrong size fails loudly.
func Decode(buf []byte) (Record, error) {
	if len(buf) != Size {
		return Record{}, &sdkerrors.LayoutError{Record: "node", Size: len(buf), Want: Size}
	}
	le := binary.LittleEndian
	var r Record
	r.ID = le.Uint32(buf[OffsetID:])
	r.NamePtr = le.Uint32(buf[OffsetNamePtr:])
	r.NameLen = le.Uint32(buf[OffsetNameLen:])
	getFloats(buf[OffsetPosition:], r.Position[:])
	getFloats(buf[OffsetScale:], r.Scale[:])
	getFloats(buf[OffsetQuaternion:], r.Quaternion[:])
	r.Parent = le.Uint32(buf[OffsetParent:])
	r.FirstChild = le.Uint32(buf[OffsetFirstChild:])
	r.NextSibling = le.Uint32(buf[OffsetNextSibling:])
	r.PrevSibling = le.Uint32(buf[OffsetPrevSibling:])
	return r, nil
}

func putFloats(dst []byte, v []float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

func getFloats(src []byte, v []float32) {
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
