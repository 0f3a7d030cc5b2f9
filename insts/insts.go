// Package insts provides ARMv6-M Thumb instruction definitions and decoding.
//
// This package implements decoding of raw little-endian machine code into
// structured instruction representations. It covers the full reduced Thumb
// instruction set of the ARMv6-M architecture: all 16-bit encodings plus the
// 32-bit branch and miscellaneous control encodings (MSR, MRS, the
// DSB/DMB/ISB barriers and BL).
//
// Usage:
//
//	inst, err := insts.Parse([]byte{0xb0, 0xb5}) // PUSH {R4, R5, R7, LR}
//	if err != nil {
//		// not a valid instruction
//	}
//	fmt.Printf("width: %v, operation: %#v\n", inst.Width, inst.Operation)
//
// Decoding is purely functional: every call is independent, no state is
// shared, and a Decoder may be used from any number of goroutines.
package insts

// Width tags how many halfwords an instruction's encoding occupies.
type Width uint8

// Instruction widths.
const (
	Width16 Width = iota // one halfword, 2 bytes
	Width32              // two halfwords, 4 bytes
)

// Bytes returns the number of bytes an encoding of this width consumes.
func (w Width) Bytes() int {
	if w == Width32 {
		return 4
	}
	return 2
}

func (w Width) String() string {
	if w == Width32 {
		return "32-bit"
	}
	return "16-bit"
}

// Instruction is the result of decoding one instruction. Width always
// matches the number of bytes the encoding consumed.
type Instruction struct {
	Width     Width
	Operation Operation
}

// Is16Bit reports whether the instruction uses a single-halfword encoding.
func (i Instruction) Is16Bit() bool { return i.Width == Width16 }

// Is32Bit reports whether the instruction uses a two-halfword encoding.
func (i Instruction) Is32Bit() bool { return i.Width == Width32 }

// Operation is the closed set of decoded operations. Each encoding of the
// instruction set has its own struct carrying exactly the operand fields
// that encoding defines. Immediates are stored pre-shifted and, where the
// architecture defines the field as signed, pre-sign-extended to their
// final semantic value (two's complement in a uint32).
type Operation interface {
	isOperation()
}

// Shift (immediate), add, subtract, move and compare.

// LSLImm is logical shift left by immediate. A zero shift amount is not
// representable here: the architecture redefines that encoding as MOVReg.
type LSLImm struct {
	Rd  Register
	Rm  Register
	Imm uint32
}

// LSRImm is logical shift right by immediate.
type LSRImm struct {
	Rd  Register
	Rm  Register
	Imm uint32
}

// ASRImm is arithmetic shift right by immediate.
type ASRImm struct {
	Rd  Register
	Rm  Register
	Imm uint32
}

// ADDReg adds two registers.
type ADDReg struct {
	Rd Register
	Rn Register
	Rm Register
}

// SUBReg subtracts a register from a register.
type SUBReg struct {
	Rd Register
	Rn Register
	Rm Register
}

// ADDImm adds an immediate to a register.
type ADDImm struct {
	Rd  Register
	Rn  Register
	Imm uint32
}

// SUBImm subtracts an immediate from a register.
type SUBImm struct {
	Rd  Register
	Rn  Register
	Imm uint32
}

// MOVImm moves an 8-bit immediate into a register.
type MOVImm struct {
	Rd  Register
	Imm uint32
}

// CMPImm compares a register with an 8-bit immediate.
type CMPImm struct {
	Rn  Register
	Imm uint32
}

// Data processing (register-register).

// ANDReg is bitwise AND.
type ANDReg struct {
	Rdn Register
	Rm  Register
}

// EORReg is bitwise exclusive OR.
type EORReg struct {
	Rdn Register
	Rm  Register
}

// LSLReg is logical shift left by a register-held amount.
type LSLReg struct {
	Rdn Register
	Rm  Register
}

// LSRReg is logical shift right by a register-held amount.
type LSRReg struct {
	Rdn Register
	Rm  Register
}

// ASRReg is arithmetic shift right by a register-held amount.
type ASRReg struct {
	Rdn Register
	Rm  Register
}

// ADCReg adds two registers plus the carry flag.
type ADCReg struct {
	Rd Register
	Rn Register
	Rm Register
}

// SBCReg subtracts a register and the inverted carry flag.
type SBCReg struct {
	Rdn Register
	Rm  Register
}

// RORReg rotates right by a register-held amount.
type RORReg struct {
	Rdn Register
	Rm  Register
}

// TSTReg performs AND, setting flags without writing a result.
type TSTReg struct {
	Rn Register
	Rm Register
}

// RSBImm is reverse subtract from zero (the only immediate it supports).
type RSBImm struct {
	Rd Register
	Rn Register
}

// CMPReg compares two registers. Produced both by the low-register encoding
// and by the high-register special data processing encoding.
type CMPReg struct {
	Rn Register
	Rm Register
}

// CMNReg is compare negative (adds, setting flags without a result).
type CMNReg struct {
	Rn Register
	Rm Register
}

// ORRReg is bitwise inclusive OR.
type ORRReg struct {
	Rdn Register
	Rm  Register
}

// MUL multiplies two registers.
type MUL struct {
	Rdm Register
	Rn  Register
}

// BICReg is bit clear (AND with complement).
type BICReg struct {
	Rdn Register
	Rm  Register
}

// MVNReg is bitwise NOT of a register.
type MVNReg struct {
	Rd Register
	Rm Register
}

// Special data processing and branch exchange.

// ADDRegSP adds a register to the stack pointer. Produced for both forms of
// the high-register ADD in which one operand is SP.
type ADDRegSP struct {
	Rd Register
	Rm Register
}

// MOVReg copies a register. SetFlags is true only for the encoding the
// architecture redefines from a zero-shift LSLImm.
type MOVReg struct {
	Rd       Register
	Rm       Register
	SetFlags bool
}

// BX is branch and exchange.
type BX struct {
	Rm Register
}

// BLXReg is branch with link and exchange to a register.
type BLXReg struct {
	Rm Register
}

// Load and store.

// LDRLiteral loads a word from a PC-relative literal pool slot. Imm is the
// word-aligned byte offset.
type LDRLiteral struct {
	Rt  Register
	Imm uint32
}

// STRReg stores a word at a register-offset address.
type STRReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// STRHReg stores a halfword at a register-offset address.
type STRHReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// STRBReg stores a byte at a register-offset address.
type STRBReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// LDRSBReg loads a sign-extended byte from a register-offset address.
type LDRSBReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// LDRReg loads a word from a register-offset address.
type LDRReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// LDRHReg loads a halfword from a register-offset address.
type LDRHReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// LDRBReg loads a byte from a register-offset address.
type LDRBReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// LDRSHReg loads a sign-extended halfword from a register-offset address.
type LDRSHReg struct {
	Rt Register
	Rn Register
	Rm Register
}

// STRImm stores a word at an immediate-offset address. Imm is in bytes,
// already multiplied out of the word-aligned encoding. The SP-relative
// form carries Rn == SP.
type STRImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// LDRImm loads a word from an immediate-offset address. Imm is in bytes.
// The SP-relative form carries Rn == SP.
type LDRImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// STRBImm stores a byte at an immediate-offset address.
type STRBImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// LDRBImm loads a byte from an immediate-offset address.
type LDRBImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// STRHImm stores a halfword at an immediate-offset address. Imm is in
// bytes, already doubled out of the halfword-aligned encoding.
type STRHImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// LDRHImm loads a halfword from an immediate-offset address. Imm is in
// bytes.
type LDRHImm struct {
	Rt  Register
	Rn  Register
	Imm uint32
}

// Address generation and stack adjustment.

// ADR forms a PC-relative address. Imm is the word-aligned byte offset.
type ADR struct {
	Rd  Register
	Imm uint32
}

// ADDImmSP adds an immediate to SP. Rd is SP itself for the stack-adjust
// form, or a low register for the address-generation form.
type ADDImmSP struct {
	Rd  Register
	Imm uint32
}

// SUBImmSP subtracts an immediate from SP.
type SUBImmSP struct {
	Imm uint32
}

// Miscellaneous 16-bit.

// SXTH sign-extends a halfword.
type SXTH struct {
	Rd Register
	Rm Register
}

// SXTB sign-extends a byte.
type SXTB struct {
	Rd Register
	Rm Register
}

// UXTH zero-extends a halfword.
type UXTH struct {
	Rd Register
	Rm Register
}

// UXTB zero-extends a byte.
type UXTB struct {
	Rd Register
	Rm Register
}

// PUSH stores multiple registers on the stack. The list may include LR.
type PUSH struct {
	RegList RegisterList
}

// POP loads multiple registers from the stack. The list may include PC.
type POP struct {
	RegList RegisterList
}

// CPS changes the PRIMASK interrupt mask. Disable is true for CPSID.
type CPS struct {
	Disable bool
}

// REV reverses the byte order of a word.
type REV struct {
	Rd Register
	Rm Register
}

// REV16 reverses the byte order within each halfword.
type REV16 struct {
	Rd Register
	Rm Register
}

// REVSH reverses the bottom halfword's bytes and sign-extends the result.
type REVSH struct {
	Rd Register
	Rm Register
}

// BKPT is a breakpoint.
type BKPT struct {
	Imm uint32
}

// Hints.

// NOP does nothing.
type NOP struct{}

// Yield is a scheduling hint.
type Yield struct{}

// WFE waits for an event.
type WFE struct{}

// WFI waits for an interrupt.
type WFI struct{}

// SEV sends an event.
type SEV struct{}

// Store/load multiple and branches.

// STM stores multiple registers starting at an address held in Rn.
type STM struct {
	Rn      Register
	RegList RegisterList
}

// LDM loads multiple registers starting at an address held in Rn.
type LDM struct {
	Rn      Register
	RegList RegisterList
}

// B is a branch. Cond is CondNone for the unconditional encoding. Imm is
// the sign-extended, halfword-aligned byte offset.
type B struct {
	Cond Condition
	Imm  uint32
}

// SVC is a supervisor call.
type SVC struct {
	Imm uint32
}

// 32-bit branch and miscellaneous control.

// MSRReg moves a general register to a special register.
type MSRReg struct {
	Rn   Register
	SysM SpecialRegister
}

// MRS moves a special register to a general register.
type MRS struct {
	Rd   Register
	SysM SpecialRegister
}

// DSB is a data synchronization barrier with a 4-bit option code.
type DSB struct {
	Option uint8
}

// DMB is a data memory barrier with a 4-bit option code.
type DMB struct {
	Option uint8
}

// ISB is an instruction synchronization barrier with a 4-bit option code.
type ISB struct {
	Option uint8
}

// BL is branch with link. Imm is the sign-extended byte offset assembled
// from the S:I1:I2:imm10:imm11:0 interleaving.
type BL struct {
	Imm uint32
}

func (LSLImm) isOperation()     {}
func (LSRImm) isOperation()     {}
func (ASRImm) isOperation()     {}
func (ADDReg) isOperation()     {}
func (SUBReg) isOperation()     {}
func (ADDImm) isOperation()     {}
func (SUBImm) isOperation()     {}
func (MOVImm) isOperation()     {}
func (CMPImm) isOperation()     {}
func (ANDReg) isOperation()     {}
func (EORReg) isOperation()     {}
func (LSLReg) isOperation()     {}
func (LSRReg) isOperation()     {}
func (ASRReg) isOperation()     {}
func (ADCReg) isOperation()     {}
func (SBCReg) isOperation()     {}
func (RORReg) isOperation()     {}
func (TSTReg) isOperation()     {}
func (RSBImm) isOperation()     {}
func (CMPReg) isOperation()     {}
func (CMNReg) isOperation()     {}
func (ORRReg) isOperation()     {}
func (MUL) isOperation()        {}
func (BICReg) isOperation()     {}
func (MVNReg) isOperation()     {}
func (ADDRegSP) isOperation()   {}
func (MOVReg) isOperation()     {}
func (BX) isOperation()         {}
func (BLXReg) isOperation()     {}
func (LDRLiteral) isOperation() {}
func (STRReg) isOperation()     {}
func (STRHReg) isOperation()    {}
func (STRBReg) isOperation()    {}
func (LDRSBReg) isOperation()   {}
func (LDRReg) isOperation()     {}
func (LDRHReg) isOperation()    {}
func (LDRBReg) isOperation()    {}
func (LDRSHReg) isOperation()   {}
func (STRImm) isOperation()     {}
func (LDRImm) isOperation()     {}
func (STRBImm) isOperation()    {}
func (LDRBImm) isOperation()    {}
func (STRHImm) isOperation()    {}
func (LDRHImm) isOperation()    {}
func (ADR) isOperation()        {}
func (ADDImmSP) isOperation()   {}
func (SUBImmSP) isOperation()   {}
func (SXTH) isOperation()       {}
func (SXTB) isOperation()       {}
func (UXTH) isOperation()       {}
func (UXTB) isOperation()       {}
func (PUSH) isOperation()       {}
func (POP) isOperation()        {}
func (CPS) isOperation()        {}
func (REV) isOperation()        {}
func (REV16) isOperation()      {}
func (REVSH) isOperation()      {}
func (BKPT) isOperation()       {}
func (NOP) isOperation()        {}
func (Yield) isOperation()      {}
func (WFE) isOperation()        {}
func (WFI) isOperation()        {}
func (SEV) isOperation()        {}
func (STM) isOperation()        {}
func (LDM) isOperation()        {}
func (B) isOperation()          {}
func (SVC) isOperation()        {}
func (MSRReg) isOperation()     {}
func (MRS) isOperation()        {}
func (DSB) isOperation()        {}
func (DMB) isOperation()        {}
func (ISB) isOperation()        {}
func (BL) isOperation()         {}
