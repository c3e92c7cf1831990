package ctrl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/restylabs/resty/app/v1/model"
	"github.com/restylabs/resty/core/csql"
	"github.com/restylabs/resty/core/dal"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/rest"
)

// Users serves the users resource.
type Users struct {
	Users *dal.DataAccess
	Flats *dal.DataAccess
	DB    *csql.DB
}

type createUserBody struct {
	Username   *string `json:"username" validate:"required"`
	Password   *string `json:"password" validate:"required"`
	Role       *string `json:"role" validate:"required,oneof=normal admin"`
	FirstName  *string `json:"first_name" validate:"required"`
	MiddleName *string `json:"middle_name"`
	LastName   *string `json:"last_name" validate:"required"`
}

type updateUserBody struct {
	createUserBody
	LivesFlatID *int64 `json:"lives_flat_id"`
}

// Post registers a new user. Anyone may create a normal account; creating
// an admin account requires admin claims.
func (c *Users) Post(ctx *rest.Context, id *int64) error {
	if err := noID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}

	violations := &Violations{}
	body := &createUserBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if body.Role != nil && *body.Role == model.RoleAdmin && !ctx.Claims.IsAdmin() {
		return httperr.Forbidden("only admins may create admin users")
	}
	if !violations.OK() {
		return violations.Err()
	}

	user := &model.User{
		Username:   *body.Username,
		Role:       *body.Role,
		FirstName:  *body.FirstName,
		MiddleName: body.MiddleName,
		LastName:   *body.LastName,
	}
	if err := user.SetPassword(*body.Password); err != nil {
		return err
	}

	if err := c.Users.Create(user); err != nil {
		if errors.Is(err, dal.ErrUniqueViolation) {
			return httperr.Conflict("invalid request body",
				fmt.Sprintf("user '%s' already exists", user.Username))
		}
		return err
	}
	return writeEntity(ctx, user, nil)
}

// Get returns one user by id, or the user collection. The collection is
// admin only; a single user is visible to themselves and to admins.
func (c *Users) Get(ctx *rest.Context, id *int64) error {
	if err := noChain(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	if id == nil {
		if !ctx.Claims.IsAdmin() {
			return errUnauthorized()
		}
		list, err := c.Users.GetList(listQuery(ctx))
		if err != nil {
			return err
		}
		return writeList(ctx, list, includedFields(ctx))
	}

	if err := noQuery(ctx); err != nil {
		return err
	}
	if !ctx.Claims.CanAccess(*id) {
		return errUnauthorized()
	}
	e, err := c.Users.GetOne(*id)
	if err != nil {
		return err
	}
	if e == nil {
		return errNotFound()
	}
	return writeEntity(ctx, e.(*model.User), nil)
}

// Patch replaces a user. Permitted for the user themselves and for admins.
// Moving into a flat via lives_flat_id is validated against the flat's
// tenant limit.
func (c *Users) Patch(ctx *rest.Context, id *int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}
	if !ctx.Claims.CanAccess(*id) {
		return errUnauthorized()
	}

	violations := &Violations{}
	body := &updateUserBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if body.Role != nil && *body.Role == model.RoleAdmin && !ctx.Claims.IsAdmin() {
		return httperr.Forbidden("only admins may create admin users")
	}

	var livesFlatID *int64
	if body.LivesFlatID != nil {
		livesFlatID = body.LivesFlatID
		if err := c.checkMoveIn(ctx, *body.LivesFlatID, violations); err != nil {
			return err
		}
	}
	if !violations.OK() {
		return violations.Err()
	}

	user := &model.User{
		Username:    *body.Username,
		Role:        *body.Role,
		FirstName:   *body.FirstName,
		MiddleName:  body.MiddleName,
		LastName:    *body.LastName,
		LivesFlatID: livesFlatID,
	}
	if err := user.SetPassword(*body.Password); err != nil {
		return err
	}

	affected, err := c.Users.Update(user, *id)
	if err != nil {
		if errors.Is(err, dal.ErrUniqueViolation) {
			return httperr.Conflict("invalid request body",
				fmt.Sprintf("user '%s' already exists", user.Username))
		}
		return err
	}
	if affected == 0 {
		return errNotFound()
	}
	user.SetID(*id)
	return writeEntity(ctx, user, nil)
}

// checkMoveIn records a violation when the flat does not exist or is
// already at its tenant limit.
func (c *Users) checkMoveIn(ctx *rest.Context, flatID int64, violations *Violations) error {
	e, err := c.Flats.GetOne(flatID)
	if err != nil {
		return err
	}
	if e == nil {
		violations.WrongValue(flatID, "lives_flat_id")
		return nil
	}
	flat := e.(*model.Flat)

	var tenants int64
	err = c.DB.QueryRowContext(ctx.Request.Context(),
		"SELECT count(*) FROM users WHERE lives_flat_id = ?", flat.ID()).Scan(&tenants)
	if err != nil {
		return err
	}
	if tenants >= flat.MaxTenants {
		violations.Add(fmt.Sprintf("flat '%d' is already full", flat.ID()))
	}
	return nil
}

// Delete removes a user. Permitted for the user themselves and for admins.
func (c *Users) Delete(ctx *rest.Context, id *int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}
	if !ctx.Claims.CanAccess(*id) {
		return errUnauthorized()
	}

	affected, err := c.Users.Delete(*id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound()
	}
	ctx.Response.WriteHeader(http.StatusNoContent)
	return nil
}
