/*Package model declares the persistable types of the flatshare API.

Every type carries a static descriptor listing its storage columns. The
descriptor drives the generic data-access layer and is the whitelist for
the collection query parameters, so a column left out here is invisible
to filtering, projection and sorting.
*/
package model

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/restylabs/resty/core/entity"
)

// Role values for User.Role.
const (
	RoleNormal = "normal"
	RoleAdmin  = "admin"
)

var userDescriptor = entity.Descriptor{
	Table: entity.TableName("UserModel"),
	Fields: []entity.Field{
		{Column: "username", Searchable: true},
		{Column: "password"},
		{Column: "role"},
		{Column: "first_name"},
		{Column: "middle_name"},
		{Column: "last_name"},
		{Column: "lives_flat_id"},
	},
}

// User is a registered account. Password holds the bcrypt hash, never the
// plain text, and is excluded from serialization.
type User struct {
	id          int64
	Username    string
	Password    string
	Role        string
	FirstName   string
	MiddleName  *string
	LastName    string
	LivesFlatID *int64
}

// NewUser is the entity factory for users.
func NewUser() entity.Entity { return &User{} }

func (u *User) Descriptor() entity.Descriptor { return userDescriptor }

func (u *User) ID() int64      { return u.id }
func (u *User) SetID(id int64) { u.id = id }

func (u *User) FieldValues() []interface{} {
	return []interface{}{u.Username, u.Password, u.Role, u.FirstName, u.MiddleName, u.LastName, u.LivesFlatID}
}

func (u *User) FieldPointer(column string) interface{} {
	switch column {
	case "id":
		return &u.id
	case "username":
		return &u.Username
	case "password":
		return &u.Password
	case "role":
		return &u.Role
	case "first_name":
		return &u.FirstName
	case "middle_name":
		return &u.MiddleName
	case "last_name":
		return &u.LastName
	case "lives_flat_id":
		return &u.LivesFlatID
	}
	return nil
}

// SetPassword hashes the plain-text password into the Password field.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// Serialize renders the user to JSON. The password hash never appears,
// regardless of the inclusion filter.
func (u *User) Serialize(included []string) ([]byte, error) {
	return entity.Serialize(u, included, "password")
}
