/*Package query translates the four collection query parameters - search,
filter, projection and sorting - into parameterized SQL fragments.

A Parser accumulates state across calls. Search and filter compose into a
single condition string joined with AND, in call order. Every value ends up
as a bound parameter, never as SQL text; field names are only accepted when
they appear in the caller-supplied whitelist.
*/
package query

import (
	"fmt"
	"strings"
)

// Error is raised for a malformed or non-whitelisted query term. It maps to
// a 400 response and never contains SQL.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// operators in canonical longest-match order. Two-character operators must
// be tested before their single-character prefixes, otherwise "<=" would be
// split at "<" leaving a stray "=" in the value.
var operators = []string{"<=", ">=", "<>", ">", "<", "="}

// Parser builds WHERE/ORDER BY/SELECT fragments from query parameters.
// The zero value is ready to use.
type Parser struct {
	conditionString string
	conditionParams []interface{}
	fieldList       string
	sorting         string
}

// openCondition starts a new parenthesized group, joining it to any
// previously accumulated condition with AND.
func (p *Parser) openCondition() {
	if p.conditionString == "" {
		p.conditionString += " ("
	} else {
		p.conditionString += " AND ("
	}
}

// ParseSearch expands the condition with a free-text search over every
// searchable field: (field1 LIKE ? OR field2 LIKE ? ...), each bound to
// %searchKey%. An empty search key is a no-op. The caller supplies only
// allowed fields, so no whitelist check happens here.
func (p *Parser) ParseSearch(searchableFields []string, searchKey string) {
	if searchKey == "" || len(searchableFields) == 0 {
		return
	}
	p.openCondition()
	for i, field := range searchableFields {
		if i > 0 {
			p.conditionString += " OR "
		}
		p.conditionString += field + " LIKE ?"
		p.conditionParams = append(p.conditionParams, "%"+searchKey+"%")
	}
	p.conditionString += ")"
}

// ParseFilter expands the condition with a comma-separated list of
// field<op>value terms, ANDed together. Each term must split into exactly
// two non-empty parts on one of the six comparison operators, and its field
// must be whitelisted in availableFields. The right-hand side becomes a
// bound parameter as-is.
func (p *Parser) ParseFilter(availableFields []string, filters string) error {
	if filters == "" {
		return nil
	}

	condition := ""
	var params []interface{}
	for i, filter := range strings.Split(filters, ",") {
		field, operator, value, ok := splitFilter(filter)
		if !ok {
			return errorf("invalid query filter '%s'", filter)
		}
		if !contains(availableFields, field) {
			return errorf("invalid query field '%s'", field)
		}
		if i > 0 {
			condition += " AND "
		}
		condition += field + operator + "?"
		params = append(params, value)
	}

	p.openCondition()
	p.conditionString += condition + ")"
	p.conditionParams = append(p.conditionParams, params...)
	return nil
}

// splitFilter splits a single filter term at its comparison operator.
// It reports false when no operator is present, when the term contains
// more than one occurrence, or when either side is empty.
func splitFilter(filter string) (field, operator, value string, ok bool) {
	for _, op := range operators {
		if !strings.Contains(filter, op) {
			continue
		}
		parts := strings.Split(filter, op)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", "", false
		}
		return parts[0], op, parts[1], true
	}
	return "", "", "", false
}

// ParseProjection accumulates a comma-joined SELECT column list from a
// comma-separated list of field names, preserving input order. Every name
// must be whitelisted. No deduplication takes place.
func (p *Parser) ParseProjection(availableFields []string, projections string) error {
	if projections == "" {
		return nil
	}
	for i, projection := range strings.Split(projections, ",") {
		if !contains(availableFields, projection) {
			return errorf("invalid query field '%s'", projection)
		}
		if i == 0 && p.fieldList == "" {
			p.fieldList += " " + projection
		} else {
			p.fieldList += ", " + projection
		}
	}
	return nil
}

// ParseSorting accumulates an ORDER BY fragment from a comma-separated list
// of field names. A '-' prefix selects descending order and is stripped
// before the whitelist check.
func (p *Parser) ParseSorting(availableFields []string, sorting string) error {
	if sorting == "" {
		return nil
	}
	for i, sort := range strings.Split(sorting, ",") {
		direction := "ASC"
		if strings.HasPrefix(sort, "-") {
			direction = "DESC"
			sort = strings.TrimPrefix(sort, "-")
		}
		if !contains(availableFields, sort) {
			return errorf("invalid query field '%s'", sort)
		}
		if i == 0 && p.sorting == "" {
			p.sorting += " " + sort + " " + direction
		} else {
			p.sorting += ", " + sort + " " + direction
		}
	}
	return nil
}

// Condition returns the accumulated boolean expression, or the empty string
// when neither search nor filter contributed anything.
func (p *Parser) Condition() string {
	return p.conditionString
}

// Params returns the bound values, positionally aligned with the `?`
// placeholders in Condition.
func (p *Parser) Params() []interface{} {
	return p.conditionParams
}

// FieldList returns the accumulated SELECT column list, or the empty string
// meaning "all columns".
func (p *Parser) FieldList() string {
	return p.fieldList
}

// Sorting returns the accumulated ORDER BY fragment, or the empty string
// meaning "no explicit order".
func (p *Parser) Sorting() string {
	return p.sorting
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
