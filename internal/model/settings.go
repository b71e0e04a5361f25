package model

import "fmt"

// Range is an inclusive integer interval for one operand.
type Range struct {
	Min int
	Max int
}

// OperationSettings configures one operation kind.
type OperationSettings struct {
	Enabled bool
	A       Range
	B       Range
}

// Settings configures problem generation for all four operations.
// For division, A is the divisor range and B is the quotient range.
type Settings struct {
	Addition       OperationSettings
	Subtraction    OperationSettings
	Multiplication OperationSettings
	Division       OperationSettings
}

// DefaultSettings returns the canonical built-in configuration. Sessions
// played with exactly these settings are leaderboard-eligible.
func DefaultSettings() Settings {
	return Settings{
		Addition:       OperationSettings{Enabled: true, A: Range{Min: 2, Max: 100}, B: Range{Min: 2, Max: 100}},
		Subtraction:    OperationSettings{Enabled: true, A: Range{Min: 2, Max: 100}, B: Range{Min: 2, Max: 100}},
		Multiplication: OperationSettings{Enabled: true, A: Range{Min: 2, Max: 12}, B: Range{Min: 2, Max: 100}},
		Division:       OperationSettings{Enabled: true, A: Range{Min: 2, Max: 12}, B: Range{Min: 2, Max: 100}},
	}
}

// IsDefault reports whether s equals the canonical default configuration,
// field by field.
func (s Settings) IsDefault() bool {
	return s == DefaultSettings()
}

// ByOperation returns the settings for a single operation kind.
func (s Settings) ByOperation(op Operation) OperationSettings {
	switch op {
	case OpAddition:
		return s.Addition
	case OpSubtraction:
		return s.Subtraction
	case OpMultiplication:
		return s.Multiplication
	case OpDivision:
		return s.Division
	}
	return OperationSettings{}
}

// Enabled returns the enabled operations in display order.
func (s Settings) Enabled() []Operation {
	var ops []Operation
	for _, op := range Operations {
		if s.ByOperation(op).Enabled {
			ops = append(ops, op)
		}
	}
	return ops
}

// Validate checks range invariants. The generator assumes validated
// settings, so this must run at every update boundary.
func (s Settings) Validate() error {
	for _, op := range Operations {
		os := s.ByOperation(op)
		if os.A.Min > os.A.Max {
			return fmt.Errorf("%s: first operand range %d:%d has min > max", op, os.A.Min, os.A.Max)
		}
		if os.B.Min > os.B.Max {
			return fmt.Errorf("%s: second operand range %d:%d has min > max", op, os.B.Min, os.B.Max)
		}
	}
	if s.Division.A.Min < 1 {
		return fmt.Errorf("division: divisor range must start at 1 or above, got %d", s.Division.A.Min)
	}
	if s.Division.B.Min < 1 {
		return fmt.Errorf("division: quotient range must start at 1 or above, got %d", s.Division.B.Min)
	}
	return nil
}
