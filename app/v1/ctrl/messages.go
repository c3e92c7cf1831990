package ctrl

import (
	"github.com/restylabs/resty/app/v1/model"
	"github.com/restylabs/resty/core/csql"
	"github.com/restylabs/resty/core/dal"
	"github.com/restylabs/resty/core/entity"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/rest"
)

// Messages serves the messages resource. A message may only be sent to a
// flatmate or to the landlord of the sender's flat, and is only readable
// by its sender, its recipient and admins.
type Messages struct {
	Messages *dal.DataAccess
	Users    *dal.DataAccess
	DB       *csql.DB
}

type messageBody struct {
	ToID    *int64  `json:"to_id" validate:"required"`
	Message *string `json:"message" validate:"required"`
}

// Post sends a message from the authenticated user.
func (c *Messages) Post(ctx *rest.Context, id *int64) error {
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
	body := &messageBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if !violations.OK() {
		return violations.Err()
	}

	e, err := c.Users.GetOne(ctx.Claims.UserID)
	if err != nil {
		return err
	}
	if e == nil {
		return errNotFound()
	}
	sender := e.(*model.User)
	if sender.LivesFlatID == nil {
		return httperr.BadRequest("user does not live in a flat")
	}

	allowed, err := c.canMessage(ctx, sender, *body.ToID)
	if err != nil {
		return err
	}
	if !allowed {
		return errUnauthorized()
	}

	message := &model.Message{
		FromID:  ctx.Claims.UserID,
		ToID:    *body.ToID,
		Message: *body.Message,
	}
	if err := c.Messages.Create(message); err != nil {
		return err
	}
	return writeEntity(ctx, message, nil)
}

// canMessage reports whether the recipient shares the sender's flat or
// owns it.
func (c *Messages) canMessage(ctx *rest.Context, sender *model.User, toID int64) (bool, error) {
	rctx := ctx.Request.Context()

	var flatmates int64
	err := c.DB.QueryRowContext(rctx,
		`SELECT count(*) FROM users
		 WHERE id = ? AND lives_flat_id IS NOT NULL
		   AND lives_flat_id = (SELECT lives_flat_id FROM users WHERE id = ?)`,
		toID, sender.ID()).Scan(&flatmates)
	if err != nil {
		return false, err
	}
	if flatmates > 0 {
		return true, nil
	}

	var landlords int64
	err = c.DB.QueryRowContext(rctx,
		`SELECT count(*) FROM users
		 WHERE id = ? AND id = (SELECT owner_id FROM flats WHERE id = ?)`,
		toID, *sender.LivesFlatID).Scan(&landlords)
	if err != nil {
		return false, err
	}
	return landlords > 0, nil
}

// messageListQuery widens a fields projection with the sender and
// recipient columns for non-admins. The visibility filter below compares
// FromID/ToID against the claims; a projection dropping those columns
// would leave them at zero and hide every message.
func messageListQuery(ctx *rest.Context) dal.ListQuery {
	q := listQuery(ctx)
	if q.Fields != "" && !ctx.Claims.IsAdmin() {
		q.Fields += ",from_id,to_id"
	}
	return q
}

// Get returns one message by id, or the collection filtered down to the
// messages the authenticated user sent or received.
func (c *Messages) Get(ctx *rest.Context, id *int64) error {
	if err := noChain(ctx); err != nil {
		return err
	}
	if ctx.Claims == nil {
		return errUnauthorized()
	}

	if id == nil {
		list, err := c.Messages.GetList(messageListQuery(ctx))
		if err != nil {
			return err
		}
		if !ctx.Claims.IsAdmin() {
			visible := []entity.Entity{}
			for _, e := range list {
				m := e.(*model.Message)
				if m.FromID == ctx.Claims.UserID || m.ToID == ctx.Claims.UserID {
					visible = append(visible, e)
				}
			}
			list = visible
		}
		return writeList(ctx, list, includedFields(ctx))
	}

	if err := noQuery(ctx); err != nil {
		return err
	}
	e, err := c.Messages.GetOne(*id)
	if err != nil {
		return err
	}
	if e == nil {
		return errNotFound()
	}
	message := e.(*model.Message)
	if message.FromID != ctx.Claims.UserID && message.ToID != ctx.Claims.UserID && !ctx.Claims.IsAdmin() {
		return errUnauthorized()
	}
	return writeEntity(ctx, message, nil)
}
