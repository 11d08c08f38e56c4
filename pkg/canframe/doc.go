// Package canframe implements the 13-byte CAN-over-Ethernet wire format
// spoken by the gateway.
//
// Each frame on the wire is exactly [WireSize] bytes:
//
//	Byte 0:     [FF:1][RTR:1][rsvd:2=00][LEN:4]
//	Bytes 1-4:  CAN ID, big-endian 32-bit (standard frames: low 16 bits)
//	Bytes 5-12: data, LEN meaningful bytes, remainder zero-padded
//
// A [Frame] is an immutable value: it is produced by [New] or [Unmarshal]
// and never mutated in place. Marshal and Unmarshal are exact inverses for
// every valid frame.
package canframe
