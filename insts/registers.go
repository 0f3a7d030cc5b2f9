package insts

import "fmt"

// Register identifies one of the 16 general-purpose registers.
type Register uint8

// General-purpose registers. R13-R15 carry their architectural aliases:
// downstream consumers special-case SP for stack-relative addressing forms.
const (
	R0 Register = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP // stack pointer (R13)
	LR // link register (R14)
	PC // program counter (R15)
)

// RegisterFromCode converts a raw register code to a Register. Codes above
// 15 fail with ErrInvalidRegister; a 4-bit field can never produce one.
func RegisterFromCode(code uint8) (Register, error) {
	if code > 15 {
		return 0, fmt.Errorf("register code %d: %w", code, ErrInvalidRegister)
	}
	return Register(code), nil
}

func (r Register) String() string {
	switch r {
	case SP:
		return "SP"
	case LR:
		return "LR"
	case PC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", uint8(r))
	}
}

// SpecialRegister identifies a processor system register reachable through
// the MSR and MRS encodings. The valid 8-bit codes are sparse; anything
// outside the set below is rejected.
type SpecialRegister uint8

// Special registers and their SYSm codes.
const (
	APSR    SpecialRegister = 0  // application program status register
	IAPSR   SpecialRegister = 1  // IPSR and APSR combined
	EAPSR   SpecialRegister = 2  // EPSR and APSR combined
	XPSR    SpecialRegister = 3  // all three PSRs combined
	IPSR    SpecialRegister = 5  // interrupt program status register
	EPSR    SpecialRegister = 6  // execution program status register
	IEPSR   SpecialRegister = 7  // IPSR and EPSR combined
	MSP     SpecialRegister = 8  // main stack pointer
	PSP     SpecialRegister = 9  // process stack pointer
	PRIMASK SpecialRegister = 16 // exception mask
	CONTROL SpecialRegister = 20 // control register
)

// SpecialRegisterFromCode converts a raw SYSm code to a SpecialRegister.
// Codes outside the defined sparse set fail with ErrInvalidSpecialRegister.
func SpecialRegisterFromCode(code uint8) (SpecialRegister, error) {
	switch SpecialRegister(code) {
	case APSR, IAPSR, EAPSR, XPSR, IPSR, EPSR, IEPSR, MSP, PSP, PRIMASK, CONTROL:
		return SpecialRegister(code), nil
	default:
		return 0, fmt.Errorf("system register code %d: %w",
			code, ErrInvalidSpecialRegister)
	}
}

func (r SpecialRegister) String() string {
	switch r {
	case APSR:
		return "APSR"
	case IAPSR:
		return "IAPSR"
	case EAPSR:
		return "EAPSR"
	case XPSR:
		return "XPSR"
	case IPSR:
		return "IPSR"
	case EPSR:
		return "EPSR"
	case IEPSR:
		return "IEPSR"
	case MSP:
		return "MSP"
	case PSP:
		return "PSP"
	case PRIMASK:
		return "PRIMASK"
	case CONTROL:
		return "CONTROL"
	default:
		return fmt.Sprintf("SpecialRegister(%d)", uint8(r))
	}
}

// RegisterList is an ordered sequence of registers expanded from a bitmap,
// ascending by bit index. Built from a bitmap, it can never hold duplicates.
type RegisterList []Register

// RegisterListFromBitmap expands a 16-bit bitmap into the registers whose
// bit is set: bit i present means register i included. Callers assemble the
// full mask first; PUSH and POP fold their LR/PC bit into the bitmap before
// calling.
func RegisterListFromBitmap(bitmap uint16) RegisterList {
	var list RegisterList
	for i := 0; i < 16; i++ {
		if (bitmap>>i)&0b1 == 0b1 {
			list = append(list, Register(i))
		}
	}
	return list
}
