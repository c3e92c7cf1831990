package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearch(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"username"}, "joe")
	assert.Equal(t, " (username LIKE ?)", p.Condition())
	assert.Equal(t, []interface{}{"%joe%"}, p.Params())
}

func TestParseSearchMultipleFields(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"first_name", "last_name"}, "doe")
	assert.Equal(t, " (first_name LIKE ? OR last_name LIKE ?)", p.Condition())
	assert.Equal(t, []interface{}{"%doe%", "%doe%"}, p.Params())
}

func TestParseSearchEmptyKey(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"username"}, "")
	assert.Empty(t, p.Condition())
	assert.Empty(t, p.Params())
}

func TestParseFilterOperators(t *testing.T) {
	fields := []string{"age", "role", "id"}
	cases := []struct {
		filter    string
		condition string
		param     string
	}{
		{"age<=30", " (age<=?)", "30"},
		{"age>=18", " (age>=?)", "18"},
		{"role<>admin", " (role<>?)", "admin"},
		{"age>21", " (age>?)", "21"},
		{"age<65", " (age<?)", "65"},
		{"role=normal", " (role=?)", "normal"},
	}
	for _, c := range cases {
		p := Parser{}
		err := p.ParseFilter(fields, c.filter)
		require.NoError(t, err, c.filter)
		assert.Equal(t, c.condition, p.Condition(), c.filter)
		assert.Equal(t, []interface{}{c.param}, p.Params(), c.filter)
	}
}

// "age<=30" must select "<=", not "<" followed by a failure on the
// residual "=30".
func TestParseFilterLongestMatch(t *testing.T) {
	p := Parser{}
	err := p.ParseFilter([]string{"age"}, "age<=30")
	require.NoError(t, err)
	assert.Equal(t, " (age<=?)", p.Condition())
	assert.Equal(t, []interface{}{"30"}, p.Params())
}

func TestParseFilterMultipleTerms(t *testing.T) {
	p := Parser{}
	err := p.ParseFilter([]string{"age", "role"}, "age>=18,role=admin")
	require.NoError(t, err)
	assert.Equal(t, " (age>=? AND role=?)", p.Condition())
	assert.Equal(t, []interface{}{"18", "admin"}, p.Params())
}

func TestParseFilterErrors(t *testing.T) {
	fields := []string{"age", "role"}
	for _, filter := range []string{
		"age",        // no operator
		"age=30=40",  // more than one operator
		"=30",        // empty field
		"age=",       // empty value
		"height=180", // field not whitelisted
	} {
		p := Parser{}
		err := p.ParseFilter(fields, filter)
		require.Error(t, err, filter)
		var qerr *Error
		assert.True(t, errors.As(err, &qerr), filter)
		assert.NotContains(t, qerr.Message, "SELECT", filter)
	}
}

func TestParseFilterErrorNamesOffendingTerm(t *testing.T) {
	p := Parser{}
	err := p.ParseFilter([]string{"age"}, "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	p = Parser{}
	err = p.ParseFilter([]string{"age"}, "height=180")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "height")
}

func TestSearchAndFilterCompose(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"username"}, "joe")
	err := p.ParseFilter([]string{"role"}, "role=admin")
	require.NoError(t, err)
	assert.Equal(t, " (username LIKE ?) AND (role=?)", p.Condition())
	assert.Equal(t, []interface{}{"%joe%", "admin"}, p.Params())
}

// The parameter count must always equal the number of placeholders.
func TestParamPlaceholderAlignment(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"username", "first_name", "last_name"}, "a")
	err := p.ParseFilter([]string{"age", "role"}, "age<=30,role<>admin")
	require.NoError(t, err)
	assert.Equal(t, strings.Count(p.Condition(), "?"), len(p.Params()))
}

func TestParseProjection(t *testing.T) {
	p := Parser{}
	err := p.ParseProjection([]string{"id", "username", "role"}, "username,id,username")
	require.NoError(t, err)
	// order preserved, no deduplication
	assert.Equal(t, " username, id, username", p.FieldList())
}

func TestParseProjectionUnknownField(t *testing.T) {
	p := Parser{}
	err := p.ParseProjection([]string{"id"}, "id,password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestParseSorting(t *testing.T) {
	p := Parser{}
	err := p.ParseSorting([]string{"name", "date"}, "name,-date")
	require.NoError(t, err)
	assert.Equal(t, " name ASC, date DESC", p.Sorting())
}

func TestParseSortingUnknownField(t *testing.T) {
	p := Parser{}
	err := p.ParseSorting([]string{"name"}, "-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestEmptyParametersAreNoOps(t *testing.T) {
	p := Parser{}
	p.ParseSearch([]string{"a"}, "")
	require.NoError(t, p.ParseFilter([]string{"a"}, ""))
	require.NoError(t, p.ParseProjection([]string{"a"}, ""))
	require.NoError(t, p.ParseSorting([]string{"a"}, ""))
	assert.Empty(t, p.Condition())
	assert.Empty(t, p.Params())
	assert.Empty(t, p.FieldList())
	assert.Empty(t, p.Sorting())
}

// round-trip: split at the operator and rejoin, for all six operators
func TestSplitFilterRoundTrip(t *testing.T) {
	for _, term := range []string{"a<=1", "a>=1", "a<>1", "a>1", "a<1", "a=1"} {
		field, op, value, ok := splitFilter(term)
		require.True(t, ok, term)
		assert.Equal(t, term, field+op+value)
	}
}
