package oboron

// CBC block padding. A single 0x01 sentinel followed by 0x00 fill brings
// the plaintext to the next 16-byte boundary. 0x01 and 0x00 are C0
// controls, so the sentinel cannot be mistaken for the tail of a
// multi-byte UTF-8 sequence, and block-aligned plaintext carries no
// padding at all (one block shorter than PKCS#7 in that case). This
// layout is a compatibility promise shared with the other oboron
// implementations.

const (
	aesBlockSize = 16
	padSentinel  = 0x01
)

// padBlocks appends padding to reach the next multiple of 16 bytes.
// Non-empty block-aligned input is returned as-is; everything else,
// including empty input, gains a 0x01 sentinel and 0x00 fill. The input
// slice is not modified.
func padBlocks(plaintext []byte) []byte {
	n := len(plaintext)
	if n > 0 && n%aesBlockSize == 0 {
		return plaintext
	}
	total := (n/aesBlockSize + 1) * aesBlockSize
	padded := make([]byte, total)
	copy(padded, plaintext)
	padded[n] = padSentinel
	return padded
}

// unpadBlocks strips padding added by padBlocks. If the final block ends
// in a run of 0x00s terminated by a 0x01, everything from that 0x01 on
// is removed; otherwise the input is returned unchanged (the plaintext
// ended exactly on a block boundary). The caller must have verified the
// input is block-aligned.
func unpadBlocks(b []byte) []byte {
	i := len(b) - 1
	floor := len(b) - aesBlockSize
	for i >= floor && i >= 0 && b[i] == 0x00 {
		i--
	}
	if i >= floor && i >= 0 && b[i] == padSentinel {
		return b[:i]
	}
	return b
}
