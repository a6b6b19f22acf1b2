package api

import (
	"context"
	"errors"
	"net/http"
)

var ErrPasswordMismatch = errors.New("new password and confirmation do not match")

type UsersService struct {
	d Doer
}

func (s *UsersService) Profile(ctx context.Context) (*Profile, error) {
	return call[*Profile](ctx, s.d, http.MethodGet, "/users/profile", nil, nil)
}

func (s *UsersService) UpdateProfile(ctx context.Context, in UpdateProfile) (*Profile, error) {
	return call[*Profile](ctx, s.d, http.MethodPut, "/users/profile", nil, in)
}

func (s *UsersService) ChangePassword(ctx context.Context, in ChangePassword) error {
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return exec(ctx, s.d, http.MethodPatch, "/users/password", in)
}

// DeleteAccount deletes the signed-in account. The password is sent in the
// body of the DELETE request.
func (s *UsersService) DeleteAccount(ctx context.Context, in DeleteAccount) error {
	return exec(ctx, s.d, http.MethodDelete, "/users/account", in)
}
