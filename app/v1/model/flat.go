package model

import "github.com/restylabs/resty/core/entity"

var flatDescriptor = entity.Descriptor{
	Table: entity.TableName("FlatModel"),
	Fields: []entity.Field{
		{Column: "address", Searchable: true},
		{Column: "max_tenants"},
		{Column: "owner_id"},
	},
}

// Flat is a shared apartment owned by a user. MaxTenants caps how many
// users may live in it at the same time.
type Flat struct {
	id         int64
	Address    string
	MaxTenants int64
	OwnerID    int64
}

// NewFlat is the entity factory for flats.
func NewFlat() entity.Entity { return &Flat{} }

func (f *Flat) Descriptor() entity.Descriptor { return flatDescriptor }

func (f *Flat) ID() int64      { return f.id }
func (f *Flat) SetID(id int64) { f.id = id }

func (f *Flat) FieldValues() []interface{} {
	return []interface{}{f.Address, f.MaxTenants, f.OwnerID}
}

func (f *Flat) FieldPointer(column string) interface{} {
	switch column {
	case "id":
		return &f.id
	case "address":
		return &f.Address
	case "max_tenants":
		return &f.MaxTenants
	case "owner_id":
		return &f.OwnerID
	}
	return nil
}

// Serialize renders the flat to JSON.
func (f *Flat) Serialize(included []string) ([]byte, error) {
	return entity.Serialize(f, included)
}
