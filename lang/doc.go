// Package lang implements the sx expression language: a small embeddable
// s-expression dialect for scripting and configuration inside Go programs.
//
// # Philosophy
//
// The language has exactly one composite syntax, the parenthesized
// invocation, plus literals, lists, and quotation. Everything else is the
// host's job: arithmetic, I/O, and domain operations enter the language as
// registered externs or as members resolved on host objects through a
// [Binder]. The core stays small enough for a hand-written recursive descent
// parser, and errors are ordinary values in both the syntax tree and the
// evaluator.
//
// # Grammar
//
// Informal EBNF:
//
//	Expr       → '(' IdentForm Expr* ')' | '[' Expr* ']' | '~' Expr | Literal
//	IdentForm  → Name | '.' Name | Name ('.' Name)* '/' Name
//	Literal    → String | Integer | Decimal | Double | Float | Boolean | Null
//
// Braces are interchangeable with parentheses, and commas count as
// whitespace. The three identifier forms select how an invocation target is
// resolved: a bare name is looked up in the lexical scope, '.name' invokes a
// member on its first argument, and 'path.to.type/name' invokes a static
// member on a host type resolved by the binder.
//
// # Example
//
// A conditional, a heterogeneous list, quotation and forcing, an instance
// member on its receiver, and a static member on a host type:
//
//	(if (eq 1 1) 'yes' 'no')
//	[1 2.5 'three' true null]
//	~(print 'later')
//	(eval ~(print 'later'))
//	(.length 'hello')
//	(math.rand/intn 10)
//
// # Numeric literals
//
// A bare integer is an Integer (int64). A trailing 'd' makes a Double
// (float64), a trailing 'f' makes a Float (float32), and a decimal point
// with no suffix makes a Decimal, backed by [decimal.Decimal] for exact
// arithmetic in host code.
//
// # Evaluation
//
// [Evaluator] walks the tree directly. Literals evaluate to Go values,
// quotes evaluate to their inner node as a first-class value, and
// invocations dispatch on the identifier form. The builtins eval, if, eq,
// and ne are pre-registered externs; additional externs receive their
// invocation node unevaluated and decide their own argument policy.
package lang
