package insts

import "fmt"

// Condition selects under which processor-flag state a branch executes.
type Condition uint8

// Branch conditions. CondNone (code 14) is the "always" value carried by
// the unconditional branch encoding; it is a valid, representable
// condition, not an absence of one. Code 15 is never a condition: the
// conditional-branch group reuses that nibble for SVC.
const (
	CondEQ   Condition = 0  // equal (Z == 1)
	CondNE   Condition = 1  // not equal (Z == 0)
	CondCS   Condition = 2  // carry set / unsigned higher or same
	CondCC   Condition = 3  // carry clear / unsigned lower
	CondMI   Condition = 4  // minus / negative (N == 1)
	CondPL   Condition = 5  // plus / positive or zero (N == 0)
	CondVS   Condition = 6  // overflow (V == 1)
	CondVC   Condition = 7  // no overflow (V == 0)
	CondHI   Condition = 8  // unsigned higher (C == 1 && Z == 0)
	CondLS   Condition = 9  // unsigned lower or same (C == 0 || Z == 1)
	CondGE   Condition = 10 // signed greater than or equal (N == V)
	CondLT   Condition = 11 // signed less than (N != V)
	CondGT   Condition = 12 // signed greater than (Z == 0 && N == V)
	CondLE   Condition = 13 // signed less than or equal (Z == 1 || N != V)
	CondNone Condition = 14 // always (unconditional)
)

// ConditionFromCode converts a raw 4-bit condition code to a Condition.
// Codes above 14 fail with ErrInvalidCondition.
func ConditionFromCode(code uint8) (Condition, error) {
	if code > 14 {
		return 0, fmt.Errorf("condition code %d: %w", code, ErrInvalidCondition)
	}
	return Condition(code), nil
}

func (c Condition) String() string {
	names := [...]string{
		"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
		"HI", "LS", "GE", "LT", "GT", "LE", "None",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("Condition(%d)", uint8(c))
}
