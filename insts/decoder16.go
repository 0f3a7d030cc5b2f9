package insts

import "fmt"

// decode16 dispatches a halfword on its major opcode (bits 15-10) into the
// instruction-format groups of the architecture's 16-bit opcode map.
func (d *Decoder) decode16(hw uint16) (Operation, error) {
	switch opcode := bits16(hw, 10, 6); {
	case opcode <= 0b001111:
		return decodeShiftArith(hw)

	case opcode == 0b010000:
		return decodeDataProcessing(hw)

	case opcode == 0b010001:
		return decodeSpecialDataBranchExchange(hw)

	case opcode >= 0b010010 && opcode <= 0b010011:
		// LDR literal
		rt := Register(bits16(hw, 8, 3))
		imm := uint32(hw&0xff) << 2
		return LDRLiteral{Rt: rt, Imm: imm}, nil

	case opcode >= 0b010100 && opcode <= 0b100111:
		return decodeLoadStore(hw)

	case opcode >= 0b101000 && opcode <= 0b101001:
		// ADR
		rd := Register(bits16(hw, 8, 3))
		imm := uint32(hw&0xff) << 2
		return ADR{Rd: rd, Imm: imm}, nil

	case opcode >= 0b101010 && opcode <= 0b101011:
		// ADD SP plus immediate, address-generation form
		rd := Register(bits16(hw, 8, 3))
		imm := uint32(hw&0xff) << 2
		return ADDImmSP{Rd: rd, Imm: imm}, nil

	case opcode >= 0b101100 && opcode <= 0b101111:
		return decodeMisc16(hw)

	case opcode >= 0b110000 && opcode <= 0b110001:
		// STM
		rn := Register(bits16(hw, 8, 3))
		return STM{Rn: rn, RegList: RegisterListFromBitmap(hw & 0xff)}, nil

	case opcode >= 0b110010 && opcode <= 0b110011:
		// LDM
		rn := Register(bits16(hw, 8, 3))
		return LDM{Rn: rn, RegList: RegisterListFromBitmap(hw & 0xff)}, nil

	case opcode >= 0b110100 && opcode <= 0b110111:
		return decodeConditionalBranch(hw)

	case opcode >= 0b111000 && opcode <= 0b111001:
		// unconditional B
		imm := signExtend16((hw&0x7ff)<<1, 12)
		return B{Cond: CondNone, Imm: imm}, nil

	default:
		// 0b111010 and above are 32-bit prefixes; the width classifier
		// never routes them here.
		return nil, fmt.Errorf("halfword %#06x: %w", hw, ErrUnsupportedEncoding)
	}
}

// decodeShiftArith resolves the shift (immediate), add, subtract, move and
// compare group on bits 13-9.
func decodeShiftArith(hw uint16) (Operation, error) {
	switch opcode := bits16(hw, 9, 5); {
	case opcode <= 0b00011:
		// LSL immediate. A zero shift amount is architecturally redefined
		// as MOV register with flag setting, so the choice of variant
		// depends on the decoded immediate, not the opcode bits.
		imm := bits16(hw, 6, 5)
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		if imm == 0 {
			return MOVReg{Rd: rd, Rm: rm, SetFlags: true}, nil
		}
		return LSLImm{Rd: rd, Rm: rm, Imm: uint32(imm)}, nil

	case opcode <= 0b00111:
		// LSR immediate
		imm := bits16(hw, 6, 5)
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return LSRImm{Rd: rd, Rm: rm, Imm: uint32(imm)}, nil

	case opcode <= 0b01011:
		// ASR immediate
		imm := bits16(hw, 6, 5)
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return ASRImm{Rd: rd, Rm: rm, Imm: uint32(imm)}, nil

	case opcode == 0b01100:
		// ADD register
		rm := Register(bits16(hw, 6, 3))
		rn := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return ADDReg{Rd: rd, Rn: rn, Rm: rm}, nil

	case opcode == 0b01101:
		// SUB register
		rm := Register(bits16(hw, 6, 3))
		rn := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return SUBReg{Rd: rd, Rn: rn, Rm: rm}, nil

	case opcode == 0b01110:
		// ADD 3-bit immediate
		imm := bits16(hw, 6, 3)
		rn := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return ADDImm{Rd: rd, Rn: rn, Imm: uint32(imm)}, nil

	case opcode == 0b01111:
		// SUB 3-bit immediate
		imm := bits16(hw, 6, 3)
		rn := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return SUBImm{Rd: rd, Rn: rn, Imm: uint32(imm)}, nil

	case opcode <= 0b10011:
		// MOV immediate
		rd := Register(bits16(hw, 8, 3))
		return MOVImm{Rd: rd, Imm: uint32(hw & 0xff)}, nil

	case opcode <= 0b10111:
		// CMP immediate
		rn := Register(bits16(hw, 8, 3))
		return CMPImm{Rn: rn, Imm: uint32(hw & 0xff)}, nil

	case opcode <= 0b11011:
		// ADD 8-bit immediate
		rdn := Register(bits16(hw, 8, 3))
		return ADDImm{Rd: rdn, Rn: rdn, Imm: uint32(hw & 0xff)}, nil

	default:
		// SUB 8-bit immediate
		rdn := Register(bits16(hw, 8, 3))
		return SUBImm{Rd: rdn, Rn: rdn, Imm: uint32(hw & 0xff)}, nil
	}
}

// decodeDataProcessing resolves the register-register data processing
// group on bits 9-6.
func decodeDataProcessing(hw uint16) (Operation, error) {
	rm := Register(bits16(hw, 3, 3))
	rdn := Register(bits16(hw, 0, 3))

	switch bits16(hw, 6, 4) {
	case 0b0000:
		return ANDReg{Rdn: rdn, Rm: rm}, nil
	case 0b0001:
		return EORReg{Rdn: rdn, Rm: rm}, nil
	case 0b0010:
		return LSLReg{Rdn: rdn, Rm: rm}, nil
	case 0b0011:
		return LSRReg{Rdn: rdn, Rm: rm}, nil
	case 0b0100:
		return ASRReg{Rdn: rdn, Rm: rm}, nil
	case 0b0101:
		return ADCReg{Rd: rdn, Rn: rdn, Rm: rm}, nil
	case 0b0110:
		return SBCReg{Rdn: rdn, Rm: rm}, nil
	case 0b0111:
		return RORReg{Rdn: rdn, Rm: rm}, nil
	case 0b1000:
		return TSTReg{Rn: rdn, Rm: rm}, nil
	case 0b1001:
		return RSBImm{Rd: rdn, Rn: rm}, nil
	case 0b1010:
		return CMPReg{Rn: rdn, Rm: rm}, nil
	case 0b1011:
		return CMNReg{Rn: rdn, Rm: rm}, nil
	case 0b1100:
		return ORRReg{Rdn: rdn, Rm: rm}, nil
	case 0b1101:
		return MUL{Rdm: rdn, Rn: rm}, nil
	case 0b1110:
		return BICReg{Rdn: rdn, Rm: rm}, nil
	default: // 0b1111
		return MVNReg{Rd: rdn, Rm: rm}, nil
	}
}

// decodeSpecialDataBranchExchange resolves the special data processing and
// branch exchange group on bits 9-6. These encodings address all 16
// registers; the destination code splits its top bit off to bit 7.
func decodeSpecialDataBranchExchange(hw uint16) (Operation, error) {
	rm := Register(bits16(hw, 3, 4))
	rdn := Register(bits16(hw, 0, 3) | bits16(hw, 7, 1)<<3)

	switch opcode := bits16(hw, 6, 4); {
	case opcode <= 0b0011:
		// The ADD forms are disambiguated by which operand is SP, not by
		// the opcode bits.
		if rdn == SP || rm == SP {
			if rm == SP {
				return ADDRegSP{Rd: rdn, Rm: rdn}, nil
			}
			return ADDRegSP{Rd: SP, Rm: rm}, nil
		}
		return ADDReg{Rd: rdn, Rn: rdn, Rm: rm}, nil

	case opcode == 0b0100:
		// unpredictable
		return nil, fmt.Errorf("halfword %#06x unpredictable: %w",
			hw, ErrUnsupportedEncoding)

	case opcode <= 0b0111:
		return CMPReg{Rn: rdn, Rm: rm}, nil

	case opcode <= 0b1011:
		return MOVReg{Rd: rdn, Rm: rm, SetFlags: false}, nil

	case opcode <= 0b1101:
		return BX{Rm: rm}, nil

	default:
		return BLXReg{Rm: rm}, nil
	}
}

// decodeLoadStore resolves the load/store group on opA (bits 15-12)
// crossed with opB (bits 11-9). Immediate offsets are stored back in
// bytes: the word forms encode offsets in words, the halfword forms in
// halfwords.
func decodeLoadStore(hw uint16) (Operation, error) {
	opA := bits16(hw, 12, 4)
	opB := bits16(hw, 9, 3)

	switch opA {
	case 0b0101:
		rm := Register(bits16(hw, 6, 3))
		rn := Register(bits16(hw, 3, 3))
		rt := Register(bits16(hw, 0, 3))
		switch opB {
		case 0b000:
			return STRReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b001:
			return STRHReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b010:
			return STRBReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b011:
			return LDRSBReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b100:
			return LDRReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b101:
			return LDRHReg{Rt: rt, Rn: rn, Rm: rm}, nil
		case 0b110:
			return LDRBReg{Rt: rt, Rn: rn, Rm: rm}, nil
		default: // 0b111
			return LDRSHReg{Rt: rt, Rn: rn, Rm: rm}, nil
		}

	case 0b0110:
		// STR/LDR immediate, word offset
		rn := Register(bits16(hw, 3, 3))
		rt := Register(bits16(hw, 0, 3))
		imm := uint32(hw&0x7c0) >> 4
		if opB <= 0b011 {
			return STRImm{Rt: rt, Rn: rn, Imm: imm}, nil
		}
		return LDRImm{Rt: rt, Rn: rn, Imm: imm}, nil

	case 0b0111:
		// STRB/LDRB immediate, byte offset
		rn := Register(bits16(hw, 3, 3))
		rt := Register(bits16(hw, 0, 3))
		imm := uint32(hw&0x7c0) >> 6
		if opB <= 0b011 {
			return STRBImm{Rt: rt, Rn: rn, Imm: imm}, nil
		}
		return LDRBImm{Rt: rt, Rn: rn, Imm: imm}, nil

	case 0b1000:
		// STRH/LDRH immediate, halfword offset
		rn := Register(bits16(hw, 3, 3))
		rt := Register(bits16(hw, 0, 3))
		imm := uint32(hw&0x7c0) >> 5
		if opB <= 0b011 {
			return STRHImm{Rt: rt, Rn: rn, Imm: imm}, nil
		}
		return LDRHImm{Rt: rt, Rn: rn, Imm: imm}, nil

	case 0b1001:
		// STR/LDR SP-relative, word offset
		rt := Register(bits16(hw, 8, 3))
		imm := uint32(hw&0xff) << 2
		if opB <= 0b011 {
			return STRImm{Rt: rt, Rn: SP, Imm: imm}, nil
		}
		return LDRImm{Rt: rt, Rn: SP, Imm: imm}, nil

	default:
		return nil, fmt.Errorf("halfword %#06x: %w", hw, ErrUnsupportedEncoding)
	}
}

// decodeMisc16 resolves the miscellaneous 16-bit group on bits 11-5.
func decodeMisc16(hw uint16) (Operation, error) {
	switch opcode := bits16(hw, 5, 7); {
	case opcode <= 0b0000011:
		// ADD SP plus immediate, stack-adjust form
		imm := uint32(hw&0x7f) << 2
		return ADDImmSP{Rd: SP, Imm: imm}, nil

	case opcode <= 0b0000111:
		// SUB SP minus immediate
		imm := uint32(hw&0x7f) << 2
		return SUBImmSP{Imm: imm}, nil

	case opcode >= 0b0010000 && opcode <= 0b0010001:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return SXTH{Rd: rd, Rm: rm}, nil

	case opcode >= 0b0010010 && opcode <= 0b0010011:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return SXTB{Rd: rd, Rm: rm}, nil

	case opcode >= 0b0010100 && opcode <= 0b0010101:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return UXTH{Rd: rd, Rm: rm}, nil

	case opcode >= 0b0010110 && opcode <= 0b0010111:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return UXTB{Rd: rd, Rm: rm}, nil

	case opcode >= 0b0100000 && opcode <= 0b0101111:
		// PUSH: the M bit folds LR into the bitmap at bit 14.
		bitmap := bits16(hw, 8, 1)<<14 | hw&0xff
		return PUSH{RegList: RegisterListFromBitmap(bitmap)}, nil

	case opcode == 0b0110011:
		// CPS
		return CPS{Disable: bits16(hw, 4, 1) == 1}, nil

	case opcode >= 0b1010000 && opcode <= 0b1010001:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return REV{Rd: rd, Rm: rm}, nil

	case opcode >= 0b1010010 && opcode <= 0b1010011:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return REV16{Rd: rd, Rm: rm}, nil

	case opcode >= 0b1010110 && opcode <= 0b1010111:
		rm := Register(bits16(hw, 3, 3))
		rd := Register(bits16(hw, 0, 3))
		return REVSH{Rd: rd, Rm: rm}, nil

	case opcode >= 0b1100000 && opcode <= 0b1101111:
		// POP: the P bit folds PC into the bitmap at bit 15.
		bitmap := bits16(hw, 8, 1)<<15 | hw&0xff
		return POP{RegList: RegisterListFromBitmap(bitmap)}, nil

	case opcode >= 0b1110000 && opcode <= 0b1110111:
		return BKPT{Imm: uint32(hw & 0xff)}, nil

	case opcode >= 0b1111000:
		return decodeHint(hw)

	default:
		return nil, fmt.Errorf("halfword %#06x: %w", hw, ErrUnsupportedEncoding)
	}
}

// decodeHint resolves the hint sub-group on opA (bits 7-4). opB (bits 3-0)
// must be zero or the encoding is invalid.
func decodeHint(hw uint16) (Operation, error) {
	opA := bits16(hw, 4, 4)
	opB := bits16(hw, 0, 4)

	if opB > 0 {
		return nil, fmt.Errorf("hint %#06x with non-zero low nibble: %w",
			hw, ErrUnsupportedEncoding)
	}

	switch opA {
	case 0b0000:
		return NOP{}, nil
	case 0b0001:
		return Yield{}, nil
	case 0b0010:
		return WFE{}, nil
	case 0b0011:
		return WFI{}, nil
	case 0b0100:
		return SEV{}, nil
	default:
		return nil, fmt.Errorf("hint %#06x: %w", hw, ErrUnsupportedEncoding)
	}
}

// decodeConditionalBranch resolves the conditional branch group. The
// condition nibble has two positional exceptions checked before generic
// condition decoding: 14 is permanently undefined and 15 is SVC.
func decodeConditionalBranch(hw uint16) (Operation, error) {
	switch opcode := bits16(hw, 8, 4); opcode {
	case 0b1110:
		return nil, fmt.Errorf("halfword %#06x permanently undefined: %w",
			hw, ErrUnsupportedEncoding)
	case 0b1111:
		return SVC{Imm: uint32(hw & 0xff)}, nil
	default:
		cond, err := ConditionFromCode(uint8(opcode))
		if err != nil {
			return nil, err
		}
		imm := signExtend16((hw&0xff)<<1, 9)
		return B{Cond: cond, Imm: imm}, nil
	}
}
