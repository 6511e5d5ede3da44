// Package envelope implements the binary contents.json that describes an
// encrypted content pack.
//
// The file is a 256-byte header followed by the key table, encrypted under
// the shared content key:
//
//	offset  size  field
//	0       4     version (uint32 LE, 0)
//	4       4     magic (uint32 LE, 2614082044)
//	8       8     reserved, zero
//	16      1     pack id length
//	17      239   pack id, zero padded
//	256     n     ciphertext of the key table, n a multiple of 16
//
// Encrypt walks a staged tree, encrypts every non-exempt file in place and
// writes the envelope. Open reverses the envelope for inspection.
package envelope
