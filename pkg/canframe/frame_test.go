package canframe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalExtendedExample(t *testing.T) {
	f, err := New(true, false, 0x12345678, []byte{0x12, 0x34, 0x56, 0x78, 0x00})
	require.NoError(t, err)

	want := []byte{
		0x85,
		0x12, 0x34, 0x56, 0x78,
		0x12, 0x34, 0x56, 0x78, 0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, f.Marshal())

	back, err := Unmarshal(want)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestMarshalStandardExample(t *testing.T) {
	f, err := New(false, false, 0x0678, []byte{0x12, 0x34, 0x56, 0x78, 0x00})
	require.NoError(t, err)

	want := []byte{
		0x05,
		0x00, 0x00, 0x06, 0x78,
		0x12, 0x34, 0x56, 0x78, 0x00, 0x00, 0x00, 0x00,
	}
	assert.Equal(t, want, f.Marshal())

	back, err := Unmarshal(want)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		extended bool
		remote   bool
		id       uint32
		data     []byte
	}{
		{"empty standard", false, false, 0x000, nil},
		{"max standard id", false, false, 0x7FF, []byte{0xFF}},
		{"remote frame", false, true, 0x123, nil},
		{"full payload", true, false, 0x18FF0001, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{"max extended id", true, false, 0x1FFFFFFF, []byte{0xAA, 0xBB}},
		{"extended remote", true, true, 0x100, []byte{0x01}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(tc.extended, tc.remote, tc.id, tc.data)
			require.NoError(t, err)

			back, err := Unmarshal(f.Marshal())
			require.NoError(t, err)
			assert.Equal(t, f, back)
		})
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	_, err := New(false, false, 0x800, nil)
	assert.ErrorIs(t, err, ErrFrameFormat, "standard id over 11 bits")

	_, err = New(true, false, 0x20000000, nil)
	assert.ErrorIs(t, err, ErrFrameFormat, "extended id over 29 bits")

	_, err = New(false, false, 0x100, make([]byte, 9))
	assert.ErrorIs(t, err, ErrFrameFormat, "payload over 8 bytes")
}

func TestUnmarshalRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, 1, 12, 14, 26} {
		_, err := Unmarshal(make([]byte, n))
		if !errors.Is(err, ErrFrameFormat) {
			t.Fatalf("length %d: expected ErrFrameFormat, got %v", n, err)
		}
	}
}

func TestUnmarshalRejectsReservedBits(t *testing.T) {
	for _, control := range []byte{0x10, 0x20, 0x30, 0x95, 0xE5} {
		b := make([]byte, WireSize)
		b[0] = control
		_, err := Unmarshal(b)
		assert.ErrorIs(t, err, ErrFrameFormat, "control byte 0x%02X", control)
	}
}

func TestUnmarshalRejectsBadDataLength(t *testing.T) {
	for _, length := range []byte{9, 10, 15} {
		b := make([]byte, WireSize)
		b[0] = length
		_, err := Unmarshal(b)
		assert.ErrorIs(t, err, ErrFrameFormat, "length nibble %d", length)
	}
}

func TestUnmarshalZeroesPadding(t *testing.T) {
	b := make([]byte, WireSize)
	b[0] = 0x02 // standard, len 2
	b[3] = 0x01
	b[4] = 0x23
	b[5], b[6] = 0xDE, 0xAD
	// garbage past the meaningful bytes must not survive decoding
	b[7], b[12] = 0xFF, 0xFF

	f, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123), f.ID)
	assert.Equal(t, [8]byte{0xDE, 0xAD}, f.Data)
}

func TestPayload(t *testing.T) {
	f, err := New(false, false, 0x200, []byte{0x2A})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A}, f.Payload())
}
