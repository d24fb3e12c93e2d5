package expr

import (
	"math"
	"reflect"
)

// undefined is the sentinel type for names absent from the environment.
type undefined struct{}

// Undefined is the value a name resolves to when it is not present in the
// environment. Resolving to it never fails by itself; arithmetic or
// ordering against it does.
var Undefined = undefined{}

// Evaluate parses and evaluates a condition against an environment, then
// coerces the result to a boolean using Python truthiness (0, "", false,
// and None are falsy). A *SyntaxError means the condition is malformed; a
// *EvalError means it evaluated to an unusable combination of types.
func Evaluate(condition string, env map[string]any) (bool, error) {
	node, err := Parse(condition)
	if err != nil {
		return false, err
	}
	return EvaluateNode(node, env)
}

// EvaluateNode evaluates an already-parsed expression against an
// environment and coerces the result to a boolean. It is useful when the
// same condition is evaluated against many environments.
func EvaluateNode(node *Node, env map[string]any) (bool, error) {
	v, err := eval(node, env)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// eval walks the AST. It has no side effects and terminates on every input
// because the tree is finite and there is no recursion in the value domain.
func eval(node *Node, env map[string]any) (any, error) {
	switch node.Kind {
	case KindLiteral:
		return node.Value, nil

	case KindName:
		if v, ok := env[node.Ident]; ok {
			return v, nil
		}
		return Undefined, nil

	case KindUnary:
		return evalUnary(node, env)

	case KindBinary:
		return evalBinary(node, env)

	case KindBool:
		return evalBool(node, env)

	case KindCompare:
		return evalCompare(node, env)
	}

	return nil, evalErrorf("unknown expression node kind %d", node.Kind)
}

func evalUnary(node *Node, env map[string]any) (any, error) {
	operand, err := eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case OpNot:
		return !truthy(operand), nil
	case OpNeg:
		n, ok := asNumber(operand)
		if !ok {
			return nil, evalErrorf("unary - requires a number, got %s", typeName(operand))
		}
		return -n, nil
	case OpPos:
		n, ok := asNumber(operand)
		if !ok {
			return nil, evalErrorf("unary + requires a number, got %s", typeName(operand))
		}
		return n, nil
	}

	return nil, evalErrorf("unsupported unary operator %q", node.Op)
}

func evalBinary(node *Node, env map[string]any) (any, error) {
	left, err := eval(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := eval(node.Right, env)
	if err != nil {
		return nil, err
	}

	ln, lok := asNumber(left)
	rn, rok := asNumber(right)
	if !lok || !rok {
		return nil, evalErrorf("operator %q requires numeric operands, got %s and %s",
			node.Op, typeName(left), typeName(right))
	}

	switch node.Op {
	case OpAdd:
		return ln + rn, nil
	case OpSub:
		return ln - rn, nil
	case OpMul:
		return ln * rn, nil
	case OpDiv:
		if rn == 0 {
			return nil, evalErrorf("division by zero")
		}
		return ln / rn, nil
	case OpMod:
		if rn == 0 {
			return nil, evalErrorf("modulo by zero")
		}
		return math.Mod(ln, rn), nil
	}

	return nil, evalErrorf("unsupported binary operator %q", node.Op)
}

// evalBool short-circuits like Python: "and" returns the first falsy
// operand or the last one, "or" returns the first truthy operand or the
// last one.
func evalBool(node *Node, env map[string]any) (any, error) {
	left, err := eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case OpAnd:
		if !truthy(left) {
			return left, nil
		}
	case OpOr:
		if truthy(left) {
			return left, nil
		}
	default:
		return nil, evalErrorf("unsupported boolean operator %q", node.Op)
	}

	return eval(node.Right, env)
}

// evalCompare evaluates a comparison chain pairwise, short-circuiting on
// the first failed link.
func evalCompare(node *Node, env map[string]any) (any, error) {
	left, err := eval(node.Left, env)
	if err != nil {
		return nil, err
	}

	for i, op := range node.Ops {
		right, err := eval(node.Comparators[i], env)
		if err != nil {
			return nil, err
		}

		ok, err := compare(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return false, nil
		}
		left = right
	}
	return true, nil
}

func compare(op Op, left, right any) (bool, error) {
	switch op {
	case OpEq:
		return valuesEqual(left, right), nil
	case OpNeq:
		return !valuesEqual(left, right), nil
	}

	// Ordering comparisons require two numbers or two strings.
	if ln, ok := asNumber(left); ok {
		if rn, ok := asNumber(right); ok {
			return orderNumbers(op, ln, rn)
		}
	}
	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return orderStrings(op, ls, rs)
		}
	}

	return false, evalErrorf("%q not supported between %s and %s", op, typeName(left), typeName(right))
}

func orderNumbers(op Op, l, r float64) (bool, error) {
	switch op {
	case OpLt:
		return l < r, nil
	case OpLte:
		return l <= r, nil
	case OpGt:
		return l > r, nil
	case OpGte:
		return l >= r, nil
	}
	return false, evalErrorf("unsupported comparison operator %q", op)
}

func orderStrings(op Op, l, r string) (bool, error) {
	switch op {
	case OpLt:
		return l < r, nil
	case OpLte:
		return l <= r, nil
	case OpGt:
		return l > r, nil
	case OpGte:
		return l >= r, nil
	}
	return false, evalErrorf("unsupported comparison operator %q", op)
}

// valuesEqual implements == for the expression value domain. Numbers
// compare numerically regardless of their Go representation; Undefined is
// equal only to itself; everything else falls back to deep equality.
func valuesEqual(left, right any) bool {
	if _, ok := left.(undefined); ok {
		_, rok := right.(undefined)
		return rok
	}
	if _, ok := right.(undefined); ok {
		return false
	}

	if ln, ok := asNumber(left); ok {
		if rn, ok := asNumber(right); ok {
			return ln == rn
		}
		return false
	}

	return reflect.DeepEqual(left, right)
}

// asNumber converts a value to float64 if it is numeric. Booleans are
// deliberately excluded: a condition comparing a boolean field against a
// number should fail on types rather than silently coerce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// truthy implements Python truthiness over the expression value domain.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case undefined:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := asNumber(v); ok {
		return n != 0
	}
	// Unknown compound values are truthy, matching Python's default.
	return true
}

// typeName names a value's type the way error messages describe it.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "None"
	case undefined:
		return "undefined"
	case bool:
		return "boolean"
	case string:
		return "string"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	return reflect.TypeOf(v).String()
}
