package conditionals

// Evaluate applies the condition to value. An unknown comparison evaluates
// to false and is reported through the error so the caller can log it.
func Evaluate(value int, c Condition) (bool, error) {
	switch c.Comparison {
	case LessThan:
		return value < c.Threshold, nil
	case LessThanOrEqual:
		return value <= c.Threshold, nil
	case GreaterThan:
		return value > c.Threshold, nil
	case GreaterThanOrEqual:
		return value >= c.Threshold, nil
	case EqualTo:
		return value == c.Threshold, nil
	default:
		return false, &UnknownComparisonError{Comparison: c.Comparison}
	}
}

// EvaluateClause reads the clause's subject from the view and evaluates it.
func EvaluateClause(cl Clause, view KingdomView) (bool, error) {
	var value int
	switch cl.Subject {
	case SubjectYear:
		value = view.GetYear()
	default:
		value = view.GetValue(cl.Target)
	}
	return Evaluate(value, cl.Condition)
}

// AllOf reports whether every clause holds. An empty list always holds.
// Evaluation stops at the first clause that fails or errors.
func AllOf(clauses []Clause, view KingdomView) (bool, error) {
	for _, cl := range clauses {
		ok, err := EvaluateClause(cl, view)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
