// Package keys generates per-file content keys and performs the AES-256
// CFB-8 transform used by marketplace content packs.
//
// The format derives the IV from the first 16 bytes of the key itself. That
// is a known weakness of the target format and is kept for compatibility; it
// is confined to DeriveIV so a compatible variant only has to change there.
package keys
