package conditionals

import (
	"fmt"

	"github.com/jwebster45206/kingdom-engine/pkg/economy"
)

// Comparison is the operator of a threshold predicate.
type Comparison string

const (
	LessThan           Comparison = "lessThan"
	LessThanOrEqual    Comparison = "lessThanOrEqual"
	GreaterThan        Comparison = "greaterThan"
	GreaterThanOrEqual Comparison = "greaterThanOrEqual"
	EqualTo            Comparison = "equalTo"
)

// Comparisons lists every supported operator.
var Comparisons = []Comparison{LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, EqualTo}

func (c Comparison) Valid() bool {
	switch c {
	case LessThan, LessThanOrEqual, GreaterThan, GreaterThanOrEqual, EqualTo:
		return true
	}
	return false
}

// Condition compares a value against a fixed threshold.
type Condition struct {
	Threshold  int        `json:"threshold" yaml:"threshold"`
	Comparison Comparison `json:"comparison" yaml:"comparison"`
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %d", c.Comparison, c.Threshold)
}

// UnknownComparisonError is returned when a condition names an operator
// that Evaluate does not understand.
type UnknownComparisonError struct {
	Comparison Comparison
}

func (e *UnknownComparisonError) Error() string {
	return fmt.Sprintf("unknown comparison %q", string(e.Comparison))
}

// SubjectKind says what a Clause reads from the kingdom.
type SubjectKind string

const (
	SubjectResource SubjectKind = "resource"
	SubjectFaction  SubjectKind = "faction"
	SubjectYear     SubjectKind = "year"
)

// Clause is one sub-condition of a composite trigger.
// Target is ignored for year clauses.
type Clause struct {
	Subject   SubjectKind
	Target    economy.Target
	Condition Condition
}

func (cl Clause) String() string {
	if cl.Subject == SubjectYear {
		return fmt.Sprintf("year %s", cl.Condition)
	}
	return fmt.Sprintf("%s %s", cl.Target, cl.Condition)
}

// KingdomView provides the minimal interface needed to evaluate clauses.
// This avoids an import cycle with the state package.
type KingdomView interface {
	GetValue(t economy.Target) int
	GetYear() int
}
