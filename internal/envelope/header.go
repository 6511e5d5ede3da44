package envelope

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Version is the only envelope version this package writes.
	Version uint32 = 0
	// Magic identifies an envelope. 0x9BCFB9FC.
	Magic uint32 = 2614082044
	// HeaderSize is the byte length of the fixed header.
	HeaderSize = 256
	// PackIDWidth is the zero-padded width of the pack id field.
	PackIDWidth = 239

	packIDLenOffset = 16
	packIDOffset    = 17
)

// ErrNotEnvelope reports input that is too short or carries the wrong magic.
var ErrNotEnvelope = errors.New("not a content envelope")

// Header is the decoded fixed prefix of an envelope.
type Header struct {
	Version uint32
	Magic   uint32
	PackID  string
}

// EncodeHeader returns the 256-byte header for packID.
func EncodeHeader(packID string) ([]byte, error) {
	if len(packID) > PackIDWidth {
		return nil, fmt.Errorf("pack id is %d bytes, limit %d", len(packID), PackIDWidth)
	}
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], Version)
	binary.LittleEndian.PutUint32(buf[4:8], Magic)
	buf[packIDLenOffset] = byte(len(packID))
	copy(buf[packIDOffset:], packID)
	return buf, nil
}

// DecodeHeader parses the header at the start of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrNotEnvelope, len(data))
	}
	h := Header{
		Version: binary.LittleEndian.Uint32(data[0:4]),
		Magic:   binary.LittleEndian.Uint32(data[4:8]),
	}
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: magic %#x", ErrNotEnvelope, h.Magic)
	}
	n := int(data[packIDLenOffset])
	if n > PackIDWidth {
		return Header{}, fmt.Errorf("%w: pack id length %d", ErrNotEnvelope, n)
	}
	h.PackID = string(data[packIDOffset : packIDOffset+n])
	return h, nil
}
