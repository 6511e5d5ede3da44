package keys

import "crypto/cipher"

// cfb8 is CFB mode with an 8-bit segment size. crypto/cipher only ships
// full-block CFB, which the client does not speak.
type cfb8 struct {
	block   cipher.Block
	reg     []byte
	out     []byte
	decrypt bool
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) cipher.Stream {
	size := block.BlockSize()
	if len(iv) != size {
		panic("keys: IV length must equal block size")
	}
	reg := make([]byte, size)
	copy(reg, iv)
	return &cfb8{block: block, reg: reg, out: make([]byte, size), decrypt: decrypt}
}

func (c *cfb8) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("keys: output smaller than input")
	}
	for i := range src {
		c.block.Encrypt(c.out, c.reg)
		in := src[i]
		b := in ^ c.out[0]
		dst[i] = b
		feedback := b
		if c.decrypt {
			feedback = in
		}
		copy(c.reg, c.reg[1:])
		c.reg[len(c.reg)-1] = feedback
	}
}
