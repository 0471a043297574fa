package citycare

import (
	"context"
	"net/http"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
)

// User is the account returned by login.
type User struct {
	ID           int64        `json:"id"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email"`
	PhoneNo      string       `json:"phoneNo"`
	Role         string       `json:"role"`
	IsEmailValid bool         `json:"isEmailValid"`
	Profile      *UserProfile `json:"profile,omitempty"`
}

type UserProfile struct {
	ID              int64  `json:"id"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// LoginResult carries the user and bearer token issued by login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// SendOTP asks the API to text a one-time password to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, request{
		endpoint: "auth.send_otp",
		method:   http.MethodPost,
		path:     "auth/send-otp",
		body:     map[string]string{"phoneNo": phone, "role": c.role},
	}, expectData("send otp", nil))
}

// Login exchanges phone and OTP for a session.
func (c *Client) Login(ctx context.Context, phone, otp string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, request{
		endpoint: "auth.login",
		method:   http.MethodPost,
		path:     "auth/login",
		body:     map[string]string{"phoneNo": phone, "otp": otp, "role": c.role},
	}, expectData("login", &result))
	if err != nil {
		return nil, err
	}
	if result.Token == "" || result.User.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeRemoteRejected, "Login failed")
	}
	return &result, nil
}
