package insts

import (
	"encoding/binary"
	"fmt"
)

// Decoder decodes ARMv6-M Thumb machine code into instructions. The zero
// value decodes without tracing; NewDecoder applies options. A Decoder
// holds no mutable state and is safe for concurrent use.
type Decoder struct {
	trace TraceLogger
}

// DecoderOption is a functional option for configuring a Decoder.
type DecoderOption func(*Decoder)

// WithTraceLogger sets a sink for diagnostic traces of the raw bitwords
// being decoded. Tracing never affects decode results.
func WithTraceLogger(l TraceLogger) DecoderOption {
	return func(d *Decoder) {
		d.trace = l
	}
}

// NewDecoder creates a new Thumb instruction decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse decodes one instruction from the start of input using a decoder
// with no trace sink.
func Parse(input []byte) (Instruction, error) {
	return (&Decoder{}).Parse(input)
}

// Parse decodes exactly one instruction from the start of input,
// interpreted little-endian, two bytes per halfword. The top five bits of
// the first halfword classify the width: 0b11101, 0b11110 and 0b11111
// select the 32-bit path, everything else the 16-bit path. Bytes beyond
// the classified width are ignored. Callers decoding a stream advance
// their offset by Instruction.Width.Bytes() after each successful call.
func (d *Decoder) Parse(input []byte) (Instruction, error) {
	if len(input) < 2 {
		return Instruction{}, fmt.Errorf(
			"need 2 bytes, have %d: %w", len(input), ErrTruncated)
	}
	hw1 := binary.LittleEndian.Uint16(input)

	switch bits16(hw1, 11, 5) {
	case 0b11101, 0b11110, 0b11111:
		if len(input) < 4 {
			return Instruction{}, fmt.Errorf(
				"32-bit encoding needs 4 bytes, have %d: %w",
				len(input), ErrTruncated)
		}
		hw2 := binary.LittleEndian.Uint16(input[2:])
		word := uint32(hw1)<<16 | uint32(hw2)
		d.tracef("instruction bits: %#034b", word)

		op, err := d.decode32(word)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Width: Width32, Operation: op}, nil
	default:
		d.tracef("instruction bits: %#018b", hw1)

		op, err := d.decode16(hw1)
		if err != nil {
			return Instruction{}, err
		}
		return Instruction{Width: Width16, Operation: op}, nil
	}
}

func (d *Decoder) tracef(format string, args ...any) {
	if d.trace != nil {
		d.trace.Logf(SeverityDebug, format, args...)
	}
}

// decode32 dispatches a 32-bit word. ARMv6-M defines only the branch and
// miscellaneous control region (op1 == 0b10 with bit 15 of the second
// halfword set); every other combination belongs to Thumb2 extensions this
// architecture does not have.
func (d *Decoder) decode32(word uint32) (Operation, error) {
	op1 := bits32(word, 27, 2)
	op := bits32(word, 15, 1)

	if op1 == 0b10 && op == 0b1 {
		return decodeBranchMiscCtrl(word)
	}
	return nil, fmt.Errorf("32-bit word %#010x: %w", word, ErrUnsupportedEncoding)
}

// decodeBranchMiscCtrl dispatches the branch and miscellaneous control
// region on op1 (bits 26-20) crossed with op2 (bits 14-12).
func decodeBranchMiscCtrl(word uint32) (Operation, error) {
	op1 := bits32(word, 20, 7)
	op2 := bits32(word, 12, 3)

	switch {
	case (op2 == 0b000 || op2 == 0b010) &&
		(op1 == 0b0111000 || op1 == 0b0111001):
		// MSR
		rn, err := RegisterFromCode(uint8(bits32(word, 16, 4)))
		if err != nil {
			return nil, err
		}
		sysm, err := SpecialRegisterFromCode(uint8(word & 0xff))
		if err != nil {
			return nil, err
		}
		return MSRReg{Rn: rn, SysM: sysm}, nil

	case (op2 == 0b000 || op2 == 0b010) && op1 == 0b0111011:
		return decodeMiscCtrl(word)

	case (op2 == 0b000 || op2 == 0b010) &&
		(op1 == 0b0111110 || op1 == 0b0111111):
		// MRS
		rd, err := RegisterFromCode(uint8(bits32(word, 8, 4)))
		if err != nil {
			return nil, err
		}
		sysm, err := SpecialRegisterFromCode(uint8(word & 0xff))
		if err != nil {
			return nil, err
		}
		return MRS{Rd: rd, SysM: sysm}, nil

	case op2 == 0b111 && op1 == 0b1111111:
		// UDF.W, permanently undefined
		return nil, fmt.Errorf("32-bit word %#010x permanently undefined: %w",
			word, ErrUnsupportedEncoding)

	case op2 == 0b101 || op2 == 0b111:
		// BL. The 25-bit offset is not a plain concatenation of the raw
		// fields: I1 and I2 come from J1 and J2 XORed against S, the
		// mechanism that extends branch range while staying bit-compatible
		// with the short encoding.
		s := bits32(word, 26, 1)
		j1 := bits32(word, 13, 1)
		j2 := bits32(word, 11, 1)
		i1 := ^(j1 ^ s) & 0b1
		i2 := ^(j2 ^ s) & 0b1
		imm10 := bits32(word, 16, 10)
		imm11 := bits32(word, 0, 11)
		imm := signExtend32(
			s<<24|i1<<23|i2<<22|imm10<<12|imm11<<1, 25)
		return BL{Imm: imm}, nil

	default:
		return nil, fmt.Errorf("32-bit word %#010x: %w", word, ErrUnsupportedEncoding)
	}
}

// decodeMiscCtrl resolves the barrier forms on bits 7-4 of the second
// halfword. Each carries a 4-bit option code (0b1111 is SY, full system).
func decodeMiscCtrl(word uint32) (Operation, error) {
	option := uint8(word & 0xf)

	switch bits32(word, 4, 4) {
	case 0b0100:
		return DSB{Option: option}, nil
	case 0b0101:
		return DMB{Option: option}, nil
	case 0b0110:
		return ISB{Option: option}, nil
	default:
		return nil, fmt.Errorf("32-bit word %#010x: %w", word, ErrUnsupportedEncoding)
	}
}
