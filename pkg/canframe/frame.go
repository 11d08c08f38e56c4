package canframe

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// WireSize is the fixed length of an encoded frame in bytes.
const WireSize = 13

// MaxDataLength is the maximum number of data bytes a frame can carry.
const MaxDataLength = 8

// Maximum CAN identifiers for the two frame types.
const (
	MaxStandardID = 0x7FF      // 11-bit
	MaxExtendedID = 0x1FFFFFFF // 29-bit
)

// Control byte layout.
const (
	flagExtended  = 0x80
	flagRemote    = 0x40
	maskReserved  = 0x30
	maskLength    = 0x0F
)

// ErrFrameFormat is the sentinel for every encode/decode validation failure.
// Use errors.Is to detect malformed wire data regardless of the detail.
var ErrFrameFormat = errors.New("canframe: bad frame format")

// Frame is a single unit of the gateway's wire format: a CAN identifier
// plus up to 8 data bytes.
type Frame struct {
	// Extended selects the 29-bit identifier space; false means 11-bit.
	Extended bool

	// Remote marks a remote transmission request (no data semantics).
	Remote bool

	// ID is the CAN identifier, within the range implied by Extended.
	ID uint32

	// Length is the number of meaningful bytes in Data (0..8).
	Length uint8

	// Data holds the payload; bytes past Length are always zero.
	Data [MaxDataLength]byte
}

// New constructs a validated Frame from a payload slice.
// The payload is copied; the caller keeps ownership of data.
func New(extended, remote bool, id uint32, data []byte) (Frame, error) {
	maxID := uint32(MaxStandardID)
	if extended {
		maxID = MaxExtendedID
	}
	if id > maxID {
		return Frame{}, fmt.Errorf("%w: id 0x%X exceeds %d-bit range", ErrFrameFormat, id, idBits(extended))
	}
	if len(data) > MaxDataLength {
		return Frame{}, fmt.Errorf("%w: data length %d exceeds %d", ErrFrameFormat, len(data), MaxDataLength)
	}

	f := Frame{
		Extended: extended,
		Remote:   remote,
		ID:       id,
		Length:   uint8(len(data)),
	}
	copy(f.Data[:], data)
	return f, nil
}

// Marshal encodes the frame into its 13-byte wire representation.
func (f Frame) Marshal() []byte {
	b := make([]byte, WireSize)

	control := f.Length & maskLength
	if f.Extended {
		control |= flagExtended
	}
	if f.Remote {
		control |= flagRemote
	}
	b[0] = control

	// Standard identifiers occupy only the low 16 bits of the ID field;
	// the encoding below zeroes the high bytes for free since the ID is
	// already validated to fit 11 bits.
	binary.BigEndian.PutUint32(b[1:5], f.ID)

	copy(b[5:], f.Data[:])
	return b
}

// Unmarshal decodes a 13-byte wire frame, validating the control byte.
// Reserved-bit violations are treated as hard failures.
func Unmarshal(b []byte) (Frame, error) {
	if len(b) != WireSize {
		return Frame{}, fmt.Errorf("%w: length %d, want %d", ErrFrameFormat, len(b), WireSize)
	}

	control := b[0]
	if control&maskReserved != 0 {
		return Frame{}, fmt.Errorf("%w: reserved bits set in control byte 0x%02X", ErrFrameFormat, control)
	}
	length := control & maskLength
	if length > MaxDataLength {
		return Frame{}, fmt.Errorf("%w: data length %d exceeds %d", ErrFrameFormat, length, MaxDataLength)
	}

	f := Frame{
		Extended: control&flagExtended != 0,
		Remote:   control&flagRemote != 0,
		Length:   length,
	}
	if f.Extended {
		f.ID = binary.BigEndian.Uint32(b[1:5])
		if f.ID > MaxExtendedID {
			return Frame{}, fmt.Errorf("%w: id 0x%X exceeds 29-bit range", ErrFrameFormat, f.ID)
		}
	} else {
		f.ID = uint32(binary.BigEndian.Uint16(b[3:5]))
		if f.ID > MaxStandardID {
			return Frame{}, fmt.Errorf("%w: id 0x%X exceeds 11-bit range", ErrFrameFormat, f.ID)
		}
	}

	// Only the first Length bytes are meaningful; keep the invariant that
	// trailing Data bytes are zero even if the wire carried garbage there.
	copy(f.Data[:length], b[5:5+int(length)])
	return f, nil
}

// Payload returns a copy of the meaningful data bytes.
func (f Frame) Payload() []byte {
	out := make([]byte, f.Length)
	copy(out, f.Data[:f.Length])
	return out
}

// String renders the frame for logs, e.g. "EXT 0x18FF0001 [01 00 00 00 2A]".
func (f Frame) String() string {
	kind := "STD"
	if f.Extended {
		kind = "EXT"
	}
	if f.Remote {
		kind += "/RTR"
	}
	return fmt.Sprintf("%s 0x%X % X", kind, f.ID, f.Data[:f.Length])
}

func idBits(extended bool) int {
	if extended {
		return 29
	}
	return 11
}
