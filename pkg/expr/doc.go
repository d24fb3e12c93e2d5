// Package expr implements a restricted expression language for rule
// conditions. The grammar is a hard whitelist:
//
//   - literals: numbers, single/double quoted strings, booleans, None/null
//   - bare names, resolved against an explicit per-call environment
//   - comparisons: == != < <= > >=, with Python-style chaining (1 < x < 10)
//   - boolean combinators: and, or, unary not
//   - arithmetic: + - * / % over numeric operands, unary + and -
//   - parentheses for grouping
//
// Everything else is rejected at parse time: function calls, attribute
// access, indexing, assignment, and any control-flow construct. Parse-time
// rejection, not a runtime guard, is the safety boundary; a malformed
// condition surfaces as a *SyntaxError, which callers can distinguish from
// an ordinary false evaluation.
//
// Evaluation is pure and total over the accepted grammar: it never performs
// I/O, never mutates the environment, and always terminates. Type errors
// during evaluation (comparing incompatible types, arithmetic on
// non-numbers) surface as *EvalError, never a panic.
//
// Names absent from the environment resolve to the Undefined sentinel
// rather than failing; arithmetic or ordering against Undefined still
// yields an *EvalError.
package expr
