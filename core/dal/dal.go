/*Package dal implements generic CRUD over any entity type.

A DataAccess binds one entity descriptor to the database handle. All SQL
text is assembled from the static descriptor; every user-supplied value is
a bound parameter.
*/
package dal

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/restylabs/resty/core/csql"
	"github.com/restylabs/resty/core/entity"
	"github.com/restylabs/resty/core/notify"
	"github.com/restylabs/resty/core/query"
)

// ErrUniqueViolation is returned by Create and Update when a unique
// constraint is hit. Callers are expected to special-case it, typically
// naming the conflicting value in their own error.
var ErrUniqueViolation = errors.New("unique constraint violation")

// ListQuery carries the four optional collection query parameters. An
// empty string means the parameter is absent.
type ListQuery struct {
	Search string
	Filter string
	Fields string
	Sort   string
}

// DataAccess provides CRUD for one entity type.
type DataAccess struct {
	db       *csql.DB
	factory  entity.Factory
	desc     entity.Descriptor
	notifier notify.Notifier
}

// New binds the entity type created by factory to the given database.
func New(db *csql.DB, factory entity.Factory) *DataAccess {
	return &DataAccess{
		db:      db,
		factory: factory,
		desc:    factory().Descriptor(),
	}
}

// WithNotifier makes the data access emit change notifications for every
// successful create, update and delete.
func (d *DataAccess) WithNotifier(n notify.Notifier) *DataAccess {
	d.notifier = n
	return d
}

// GetOne loads the entity with the given id. Absence is a valid outcome,
// reported as (nil, nil), not as an error.
func (d *DataAccess) GetOne(id int64) (entity.Entity, error) {
	rows, err := d.db.Query("SELECT * FROM "+d.desc.Table+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e := d.factory()
	if err := scanRow(rows, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetList loads an ordered list of entities selected by the query
// parameters. Parser errors propagate unchanged as *query.Error.
func (d *DataAccess) GetList(q ListQuery) ([]entity.Entity, error) {
	stmt, params, err := buildListStatement(d.desc, q)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(stmt, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []entity.Entity{}
	for rows.Next() {
		e := d.factory()
		if err := scanRow(rows, e); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Create inserts the entity and assigns the generated identifier back onto
// it. A unique-constraint hit is reported as ErrUniqueViolation.
func (d *DataAccess) Create(e entity.Entity) error {
	columns := d.desc.Columns()
	stmt := "INSERT INTO " + d.desc.Table +
		" (" + strings.Join(columns, ", ") + ") VALUES (" + parameterString(len(columns)) + ")"

	result, err := d.db.Exec(stmt, e.FieldValues()...)
	if err != nil {
		if csql.IsUniqueViolation(err) {
			return ErrUniqueViolation
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.SetID(id)
	d.notify(notify.OperationCreate, id)
	return nil
}

// Update overwrites every mapped field of the row with the given id and
// returns the number of affected rows; zero means no such row. Unique
// violations are reported as ErrUniqueViolation, like Create.
func (d *DataAccess) Update(e entity.Entity, id int64) (int64, error) {
	columns := d.desc.Columns()
	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = column + " = ?"
	}
	stmt := "UPDATE " + d.desc.Table + " SET " + strings.Join(assignments, ", ") + " WHERE id = ?"

	params := append(e.FieldValues(), id)
	result, err := d.db.Exec(stmt, params...)
	if err != nil {
		if csql.IsUniqueViolation(err) {
			return 0, ErrUniqueViolation
		}
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		d.notify(notify.OperationUpdate, id)
	}
	return affected, nil
}

// Delete removes the row with the given id and returns the number of
// affected rows; zero means no such row.
func (d *DataAccess) Delete(id int64) (int64, error) {
	result, err := d.db.Exec("DELETE FROM "+d.desc.Table+" WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		d.notify(notify.OperationDelete, id)
	}
	return affected, nil
}

func (d *DataAccess) notify(operation notify.Operation, id int64) {
	if d.notifier == nil {
		return
	}
	payload, _ := json.Marshal(map[string]int64{"id": id})
	d.notifier.Notify(d.desc.Table, operation, payload)
}

// buildListStatement translates the query parameters into a complete SELECT
// statement with bound parameters, using the descriptor's whitelists.
func buildListStatement(desc entity.Descriptor, q ListQuery) (string, []interface{}, error) {
	p := query.Parser{}
	p.ParseSearch(desc.SearchableFields(), q.Search)
	if err := p.ParseFilter(desc.AvailableFields(), q.Filter); err != nil {
		return "", nil, err
	}
	if err := p.ParseProjection(desc.AvailableFields(), q.Fields); err != nil {
		return "", nil, err
	}
	if err := p.ParseSorting(desc.AvailableFields(), q.Sort); err != nil {
		return "", nil, err
	}

	stmt := "SELECT *"
	if fields := p.FieldList(); fields != "" {
		stmt = "SELECT" + fields
	}
	stmt += " FROM " + desc.Table
	if condition := p.Condition(); condition != "" {
		stmt += " WHERE" + condition
	}
	if sorting := p.Sorting(); sorting != "" {
		stmt += " ORDER BY" + sorting
	}
	return stmt, p.Params(), nil
}

// returns ?,...,? n times
func parameterString(n int) string {
	result := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			result += ", "
		}
		result += "?"
	}
	return result
}

// scanRow populates the entity from the current row. Columns the entity
// does not declare are scanned into a throwaway destination and ignored.
func scanRow(rows *sql.Rows, e entity.Entity) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	dests := make([]interface{}, len(columns))
	for i, column := range columns {
		if ptr := e.FieldPointer(column); ptr != nil {
			dests[i] = ptr
		} else {
			dests[i] = new(interface{})
		}
	}
	return rows.Scan(dests...)
}
