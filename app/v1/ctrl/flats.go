package ctrl

import (
	"net/http"

	"github.com/restylabs/resty/app/v1/model"
	"github.com/restylabs/resty/core/dal"
	"github.com/restylabs/resty/core/rest"
)

// Flats serves the flats resource.
type Flats struct {
	Flats *dal.DataAccess
}

type flatBody struct {
	Address    *string `json:"address" validate:"required"`
	MaxTenants *int64  `json:"max_tenants" validate:"required,min=1"`
}

// Post creates a flat owned by the authenticated user.
func (c *Flats) Post(ctx *rest.Context, id *int64) error {
	if err := noID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	violations := &Violations{}
	body := &flatBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if !violations.OK() {
		return violations.Err()
	}

	flat := &model.Flat{
		Address:    *body.Address,
		MaxTenants: *body.MaxTenants,
		OwnerID:    ctx.Claims.UserID,
	}
	if err := c.Flats.Create(flat); err != nil {
		return err
	}
	return writeEntity(ctx, flat, nil)
}

// Get returns one flat by id, or the flat collection. Any authenticated
// user may browse flats.
func (c *Flats) Get(ctx *rest.Context, id *int64) error {
	if err := noChain(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	if id == nil {
		list, err := c.Flats.GetList(listQuery(ctx))
		if err != nil {
			return err
		}
		return writeList(ctx, list, includedFields(ctx))
	}

	if err := noQuery(ctx); err != nil {
		return err
	}
	e, err := c.Flats.GetOne(*id)
	if err != nil {
		return err
	}
	if e == nil {
		return errNotFound()
	}
	return writeEntity(ctx, e.(*model.Flat), nil)
}

// Patch replaces a flat. Permitted for the owner and for admins; the owner
// never changes on update.
func (c *Flats) Patch(ctx *rest.Context, id *int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	e, err := c.Flats.GetOne(*id)
	if err != nil {
		return err
	}
	if e == nil {
		return errNotFound()
	}
	flat := e.(*model.Flat)
	if !ctx.Claims.CanAccess(flat.OwnerID) {
		return errUnauthorized()
	}

	violations := &Violations{}
	body := &flatBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if !violations.OK() {
		return violations.Err()
	}

	flat.Address = *body.Address
	flat.MaxTenants = *body.MaxTenants
	affected, err := c.Flats.Update(flat, *id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound()
	}
	return writeEntity(ctx, flat, nil)
}

// Delete removes a flat. Permitted for the owner and for admins.
func (c *Flats) Delete(ctx *rest.Context, id *int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	if !ctx.Claims.IsAdmin() {
		e, err := c.Flats.GetOne(*id)
		if err != nil {
			return err
		}
		if e == nil {
			return errNotFound()
		}
		if e.(*model.Flat).OwnerID != ctx.Claims.UserID {
			return errUnauthorized()
		}
	}

	affected, err := c.Flats.Delete(*id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errNotFound()
	}
	ctx.Response.WriteHeader(http.StatusNoContent)
	return nil
}
