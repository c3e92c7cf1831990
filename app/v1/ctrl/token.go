package ctrl

import (
	"errors"
	"net/http"

	"github.com/restylabs/resty/app/v1/model"
	"github.com/restylabs/resty/core/access"
	"github.com/restylabs/resty/core/csql"
	"github.com/restylabs/resty/core/httperr"
	"github.com/restylabs/resty/core/rest"
)

// Token serves the login endpoint: a valid username/password pair is
// exchanged for a bearer token.
type Token struct {
	DB     *csql.DB
	Tokens *access.TokenAuthority
}

type tokenBody struct {
	Username *string `json:"username" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// Post authenticates the credentials and issues a token carrying the
// user's id and role. Wrong username and wrong password are deliberately
// indistinguishable in the response.
func (c *Token) Post(ctx *rest.Context, id *int64) error {
	if err := noID(id); err != nil {
		return err
	}
	if err := noQuery(ctx); err != nil {
		return err
	}

	violations := &Violations{}
	body := &tokenBody{}
	if err := decodeBody(ctx.Request, body, violations); err != nil {
		return err
	}
	if !violations.OK() {
		return violations.Err()
	}

	user := &model.User{}
	err := c.DB.QueryRowContext(ctx.Request.Context(),
		"SELECT id, password, role FROM users WHERE username = ?", *body.Username).
		Scan(user.FieldPointer("id"), &user.Password, &user.Role)
	if errors.Is(err, csql.ErrNoRows) {
		return httperr.BadRequest("wrong username or password")
	}
	if err != nil {
		return err
	}
	if !user.CheckPassword(*body.Password) {
		return httperr.BadRequest("wrong username or password")
	}

	token, err := c.Tokens.Issue(user.ID(), user.Role)
	if err != nil {
		return err
	}
	ctx.Log.WithField("user_id", user.ID()).Info("issued token")
	return ctx.WriteJSON(http.StatusOK, map[string]string{"token": token})
}
