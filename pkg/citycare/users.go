package citycare

import (
	"context"
	"net/http"
)

// ProfileUpdate changes the customer's name or email. Nil fields are left alone.
type ProfileUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UserDetails is the full account view.
type UserDetails struct {
	User    User         `json:"user"`
	Profile *UserProfile `json:"profile,omitempty"`
}

func (c *Client) UserDetails(ctx context.Context, userID int64) (*UserDetails, error) {
	var out UserDetails
	err := c.do(ctx, request{
		endpoint: "users.get",
		method:   http.MethodGet,
		path:     "users/" + idPath(userID),
	}, expectData("user details", &out))
	if err != nil {
		return nil, err
	}
	if out.Profile == nil {
		out.Profile = out.User.Profile
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, userID int64, update ProfileUpdate) error {
	return c.do(ctx, request{
		endpoint: "users.update_customer",
		method:   http.MethodPut,
		path:     "users/" + idPath(userID, "customer"),
		body:     update,
	}, expectData("update profile", nil))
}

func (c *Client) SendEmailOTP(ctx context.Context, userID int64, email string) error {
	return c.do(ctx, request{
		endpoint: "users.email_send_otp",
		method:   http.MethodPost,
		path:     "users/" + idPath(userID, "email", "send-otp"),
		body:     map[string]string{"email": email},
	}, expectData("send email otp", nil))
}

func (c *Client) ValidateEmailOTP(ctx context.Context, userID int64, otp string) error {
	return c.do(ctx, request{
		endpoint: "users.email_validate",
		method:   http.MethodPost,
		path:     "users/" + idPath(userID, "email", "validate"),
		body:     map[string]string{"otp": otp},
	}, expectData("validate email otp", nil))
}

// ReferralCode returns the caller's own referral code.
func (c *Client) ReferralCode(ctx context.Context) (string, error) {
	var out struct {
		Code string `json:"code"`
	}
	err := c.do(ctx, request{
		endpoint: "referrals.my_code",
		method:   http.MethodGet,
		path:     "referrals/my-code",
	}, expectData("referral code", &out))
	return out.Code, err
}

func (c *Client) ApplyReferralCode(ctx context.Context, code string) error {
	return c.do(ctx, request{
		endpoint: "referrals.apply",
		method:   http.MethodPost,
		path:     "referrals/apply",
		body:     map[string]string{"code": code},
	}, expectData("apply referral", nil))
}
