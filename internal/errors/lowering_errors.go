package errors

import (
	"fmt"
	"sort"

	"minic/internal/ast"
)

// UndefinedVariable reports a reference to an identifier with no binding in
// any enclosing scope.
func UndefinedVariable(name string, pos ast.Position, candidates []string) CompilerError {
	similar := findSimilarNames(name, candidates)
	var suggestions []Suggestion
	if len(similar) > 0 {
		suggestions = append(suggestions, Suggestion{
			Message: fmt.Sprintf("did you mean '%s'?", similar[0]),
		})
	} else {
		suggestions = append(suggestions, Suggestion{
			Message: "make sure the variable is declared before use",
		})
	}
	return CompilerError{
		Level:       Error,
		Code:        ErrorUndefinedVariable,
		Message:     fmt.Sprintf("undefined variable '%s'", name),
		Position:    pos,
		Length:      len(name),
		Suggestions: suggestions,
	}
}

// UndefinedFunction reports a call to a name with no function binding.
func UndefinedFunction(name string, pos ast.Position, candidates []string) CompilerError {
	similar := findSimilarNames(name, candidates)
	var suggestions []Suggestion
	if len(similar) > 0 {
		suggestions = append(suggestions, Suggestion{
			Message: fmt.Sprintf("did you mean '%s'?", similar[0]),
		})
	} else {
		suggestions = append(suggestions, Suggestion{
			Message: "make sure the function is declared before it is called",
		})
	}
	return CompilerError{
		Level:       Error,
		Code:        ErrorUndefinedFunction,
		Message:     fmt.Sprintf("call to undeclared function '%s'", name),
		Position:    pos,
		Length:      len(name),
		Suggestions: suggestions,
	}
}

// UnsupportedType reports a declared type other than "int"/"void".
func UnsupportedType(typeName string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorUnsupportedType,
		Message:  fmt.Sprintf("unsupported type '%s'", typeName),
		Position: pos,
		Length:   len(typeName),
		Notes:    []string{"only 'int' and 'void' are supported"},
	}
}

// MissingReturnValue reports "return;" inside a function declared to
// return int.
func MissingReturnValue(funcName string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorMissingReturnValue,
		Message:  fmt.Sprintf("function '%s' returns int but this return has no value", funcName),
		Position: pos,
		Length:   6, // len("return")
		HelpText: "add an expression, e.g. 'return 0;'",
	}
}

// Redeclaration reports a name already bound in the current scope.
func Redeclaration(name string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorRedeclaration,
		Message:  fmt.Sprintf("redeclaration of '%s' in this scope", name),
		Position: pos,
		Length:   len(name),
	}
}

// CallArityMismatch reports a call whose argument count does not match the
// callee's declared parameter count.
func CallArityMismatch(callee string, want, got int, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorCallArityMismatch,
		Message:  fmt.Sprintf("'%s' expects %d argument(s), found %d", callee, want, got),
		Position: pos,
		Length:   len(callee),
	}
}

// CallToNonFunction reports a call whose callee name resolves to a
// variable rather than a function.
func CallToNonFunction(name string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorCallToNonFunction,
		Message:  fmt.Sprintf("'%s' is not a function", name),
		Position: pos,
		Length:   len(name),
	}
}

// UnusedVariable reports a local variable that is declared but never read.
func UnusedVariable(name string, pos ast.Position) CompilerError {
	return CompilerError{
		Level:    Warning,
		Code:     WarningUnusedVariable,
		Message:  fmt.Sprintf("variable '%s' is never used", name),
		Position: pos,
		Length:   len(name),
		HelpText: "prefix with an underscore to silence this warning",
	}
}

// levenshteinDistance computes the classic edit distance between two
// strings, used to rank candidate names for "did you mean" suggestions.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// findSimilarNames ranks candidates by edit distance to name, keeping only
// those within a small threshold relative to the name's length.
func findSimilarNames(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	threshold := len(name)/3 + 1

	var matches []scored
	for _, c := range candidates {
		d := levenshteinDistance(name, c)
		if d <= threshold && d > 0 {
			matches = append(matches, scored{c, d})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].dist < matches[j].dist })

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
