package insts

// bits16 extracts width bits of v starting at bit lo.
func bits16(v uint16, lo, width uint) uint16 {
	return (v >> lo) & (1<<width - 1)
}

// bits32 extracts width bits of v starting at bit lo.
func bits32(v uint32, lo, width uint) uint32 {
	return (v >> lo) & (1<<width - 1)
}

// signExtend16 treats bit validBits-1 of v as the sign bit and propagates
// it through the full 32-bit result, leaving the low bits unchanged.
// validBits must be in 1..16; validBits == 16 sign-extends the whole
// halfword.
func signExtend16(v uint16, validBits uint) uint32 {
	shift := 16 - validBits
	return uint32(int32(int16(v<<shift) >> shift))
}

// signExtend32 treats bit validBits-1 of v as the sign bit and propagates
// it through all higher bits, leaving the low bits unchanged. validBits
// must be in 1..32; validBits == 32 is the identity.
func signExtend32(v uint32, validBits uint) uint32 {
	shift := 32 - validBits
	return uint32(int32(v<<shift) >> shift)
}
