package symtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlobalScopeInsertAndQuery(t *testing.T) {
	tbl := New()
	ok := tbl.InsertSym("add", IntFunction, 2)
	assert.True(t, ok, "first insertion of a name should succeed")

	scope, entry := tbl.QuerySym("add")
	assert.Equal(t, 0, scope, "global scope is numbered 0")
	assert.Equal(t, IntFunction, entry.Kind)
	assert.Equal(t, 2, entry.Value)
}

func TestRedeclarationInSameScopeRejected(t *testing.T) {
	tbl := New()
	assert.True(t, tbl.InsertSym("x", Var, "SYM_TABLE_0_x"))
	assert.False(t, tbl.InsertSym("x", Var, "SYM_TABLE_0_x"), "redeclaring in the same scope must fail")
}

func TestNestedScopeShadowing(t *testing.T) {
	tbl := New()
	tbl.InsertSym("x", Var, "SYM_TABLE_0_x")

	n := tbl.EnterScope()
	assert.Equal(t, 1, n, "first nested scope is numbered 1")
	assert.False(t, tbl.ExistSym("x"), "ExistSym only checks the current scope")

	tbl.InsertSym("x", Var, "SYM_TABLE_1_x")
	scope, entry := tbl.QuerySym("x")
	assert.Equal(t, 1, scope, "query resolves to the innermost binding")
	assert.Equal(t, "SYM_TABLE_1_x", entry.Value)

	tbl.ExitScope()
	scope, entry = tbl.QuerySym("x")
	assert.Equal(t, 0, scope, "after exiting, the outer binding is visible again")
	assert.Equal(t, "SYM_TABLE_0_x", entry.Value)
}

func TestQueryUnboundNameReturnsUndefined(t *testing.T) {
	tbl := New()
	_, entry := tbl.QuerySym("nope")
	assert.Equal(t, Undefined, entry.Kind)
}

func TestGetScopeNumberMangling(t *testing.T) {
	tbl := New()
	assert.Equal(t, "SYM_TABLE_0_", tbl.GetScopeNumber())

	tbl.EnterScope()
	assert.Equal(t, "SYM_TABLE_1_", tbl.GetScopeNumber())

	tbl.EnterScope()
	assert.Equal(t, "SYM_TABLE_2_", tbl.GetScopeNumber())
}

func TestExitScopeOnGlobalPanics(t *testing.T) {
	tbl := New()
	assert.Panics(t, func() { tbl.ExitScope() })
}
