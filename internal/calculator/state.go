package calculator

import (
	"strconv"
	"strings"
)

// maxOperandLen bounds each operand buffer. Key presses that would push an
// operand past this length are ignored.
const maxOperandLen = 10

// Op is a pending binary arithmetic operator.
type Op string

const (
	OpAdd      Op = "+"
	OpSubtract Op = "-"
	OpMultiply Op = "*"
	OpDivide   Op = "/"
)

// ValidOp reports whether op is one of the four supported operators.
func ValidOp(op Op) bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// State is one calculator screen's value. It is an immutable record:
// Transition returns a fresh State and never mutates its input.
//
// Invariants, maintained by Transition from the zero State:
//   - each operand holds digits and at most one '.', at most maxOperandLen bytes
//   - SecondNumber is non-empty only while Operation is set
type State struct {
	FirstNumber  string
	SecondNumber string
	Operation    Op // empty while no operator is pending
}

// Display renders the two screen lines: the committed expression
// (first operand plus any pending operator) and the entry in progress.
func (s State) Display() (expression, entry string) {
	return s.FirstNumber + string(s.Operation), s.SecondNumber
}

// Action is one key press. The set is closed: the six types below are the
// only implementations.
type Action interface {
	isAction()
}

// Digit appends one decimal digit character ('0'..'9') to the active operand.
type Digit struct {
	Value byte
}

// ChooseOperation commits the operator of the pressed button.
type ChooseOperation struct {
	Operation Op
}

// Decimal inserts a decimal point into the active operand.
type Decimal struct{}

// Delete removes the last entered character.
type Delete struct{}

// Clear resets the screen to the initial empty state.
type Clear struct{}

// Calculate evaluates the pending operation and collapses the screen to a
// single operand holding the result.
type Calculate struct{}

func (Digit) isAction()           {}
func (ChooseOperation) isAction() {}
func (Decimal) isAction()         {}
func (Delete) isAction()          {}
func (Clear) isAction()           {}
func (Calculate) isAction()       {}

// Transition applies one action to a state and returns the next state.
// Inapplicable actions (full operand, duplicate decimal point, unparsable
// operand, missing operator, out-of-range digit) return the input unchanged;
// no action ever fails with an error.
func Transition(s State, a Action) State {
	switch a := a.(type) {
	case Digit:
		return enterDigit(s, a.Value)
	case ChooseOperation:
		return chooseOperation(s, a.Operation)
	case Decimal:
		return enterDecimal(s)
	case Delete:
		return deleteLast(s)
	case Clear:
		return State{}
	case Calculate:
		return calculate(s)
	}
	return s
}

func enterDigit(s State, d byte) State {
	if d < '0' || d > '9' {
		return s
	}
	if s.Operation == "" {
		if len(s.FirstNumber) < maxOperandLen {
			s.FirstNumber += string(d)
		}
		return s
	}
	if len(s.SecondNumber) < maxOperandLen {
		s.SecondNumber += string(d)
	}
	return s
}

func chooseOperation(s State, op Op) State {
	if !ValidOp(op) {
		return s
	}
	if s.FirstNumber != "" {
		s.Operation = op
	}
	return s
}

func enterDecimal(s State) State {
	if s.Operation == "" {
		if !strings.Contains(s.FirstNumber, ".") && len(s.FirstNumber) < maxOperandLen {
			s.FirstNumber += "."
		}
		return s
	}
	if !strings.Contains(s.SecondNumber, ".") && len(s.SecondNumber) < maxOperandLen {
		s.SecondNumber += "."
	}
	return s
}

// deleteLast undoes the most recent accepted entry: a second-operand
// character first, then the pending operator, then a first-operand character.
func deleteLast(s State) State {
	switch {
	case s.SecondNumber != "":
		s.SecondNumber = s.SecondNumber[:len(s.SecondNumber)-1]
	case s.Operation != "":
		s.Operation = ""
	case s.FirstNumber != "":
		s.FirstNumber = s.FirstNumber[:len(s.FirstNumber)-1]
	}
	return s
}

func calculate(s State) State {
	a, err := strconv.ParseFloat(s.FirstNumber, 64)
	if err != nil {
		return s
	}
	b, err := strconv.ParseFloat(s.SecondNumber, 64)
	if err != nil {
		return s
	}

	var result float64
	switch s.Operation {
	case OpAdd:
		result = a + b
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		// Division by zero follows IEEE-754: the result renders as
		// +Inf, -Inf or NaN rather than failing.
		result = a / b
	default:
		return s
	}

	return State{FirstNumber: formatResult(result)}
}

// formatResult renders a result as a plain decimal string, truncated to the
// operand length bound.
func formatResult(v float64) string {
	out := strconv.FormatFloat(v, 'f', -1, 64)
	if len(out) > maxOperandLen {
		out = out[:maxOperandLen]
	}
	return out
}
