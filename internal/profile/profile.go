// Package profile manages the signed-in customer's account details: name and
// email, email verification, referral codes and the ratings they have left.
package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
)

const (
	ErrMsgUpdate       = "Failed to update profile. Please try again."
	ErrMsgSendOTP      = "Failed to send OTP. Please retry."
	ErrMsgSendRejected = "Something went wrong. Please retry."
	ErrMsgVerifyOTP    = "Failed to verify OTP."
	ErrMsgInvalidOTP   = "Invalid OTP"
	ErrMsgReferral     = "Something went wrong."
	ErrMsgEmail        = "Please enter a valid email address."

	MsgEmailVerified   = "Email verified successfully!"
	MsgReferralApplied = "Referral code applied successfully."
)

type Remote interface {
	UserDetails(ctx context.Context, userID int64) (*citycare.UserDetails, error)
	UpdateCustomer(ctx context.Context, userID int64, update citycare.ProfileUpdate) error
	SendEmailOTP(ctx context.Context, userID int64, email string) error
	ValidateEmailOTP(ctx context.Context, userID int64, otp string) error
	ReferralCode(ctx context.Context) (string, error)
	ApplyReferralCode(ctx context.Context, code string) error
	CustomerRatings(ctx context.Context, customerID int64) ([]citycare.Rating, error)
}

// UserSink receives refreshed account details so the cached session user
// stays in step with the server.
type UserSink func(ctx context.Context, user citycare.User)

type Deps struct {
	Remote   Remote
	Validate *validator.Validate
	Logger   *logger.Logger
	OnUser   UserSink
}

// Account is one device's profile drawer.
type Account struct {
	mu       sync.Mutex
	details  *citycare.UserDetails
	referral string
	ratings  []citycare.Rating
	errMsg   string
	emailErr string
	notice   string

	remote   Remote
	validate *validator.Validate
	logg     *logger.Logger
	onUser   UserSink
}

func NewAccount(deps Deps) (*Account, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("profile remote required")
	}
	a := &Account{
		ratings:  []citycare.Rating{},
		remote:   deps.Remote,
		validate: deps.Validate,
		logg:     deps.Logger,
		onUser:   deps.OnUser,
	}
	if a.validate == nil {
		a.validate = validator.New()
	}
	if a.logg == nil {
		a.logg = logger.Nop()
	}
	return a, nil
}

// Load refreshes details, referral code and ratings concurrently. Each part
// that fails keeps what was loaded before.
func (a *Account) Load(ctx context.Context, userID int64) {
	var (
		details  *citycare.UserDetails
		referral string
		ratings  []citycare.Rating
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		details, err = a.remote.UserDetails(ctx, userID)
		if err != nil {
			a.logg.Error(ctx, "load user details failed", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		referral, err = a.remote.ReferralCode(ctx)
		if err != nil {
			a.logg.Warn(ctx, "load referral code failed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ratings, err = a.remote.CustomerRatings(ctx, userID)
		if err != nil {
			a.logg.Warn(ctx, "load customer ratings failed")
		}
		return nil
	})
	_ = g.Wait()

	a.mu.Lock()
	if details != nil {
		a.details = details
	}
	if referral != "" {
		a.referral = referral
	}
	if ratings != nil {
		a.ratings = ratings
	}
	a.mu.Unlock()

	if details != nil {
		a.publish(ctx, details)
	}
}

// Update changes name and/or email. Blank values are left out of the request.
func (a *Account) Update(ctx context.Context, userID int64, fullName, email string) error {
	var update citycare.ProfileUpdate
	if name := strings.TrimSpace(fullName); name != "" {
		update.FullName = &name
	}
	if mail := strings.TrimSpace(email); mail != "" {
		if err := a.validate.Var(mail, "email"); err != nil {
			return errors.New(errors.CodeValidation, ErrMsgEmail)
		}
		update.Email = &mail
	}
	if update.FullName == nil && update.Email == nil {
		return errors.New(errors.CodeValidation, "nothing to update")
	}

	if err := a.remote.UpdateCustomer(ctx, userID, update); err != nil {
		a.logg.Error(ctx, "update profile failed", err)
		a.setError(errors.UserMessage(err, ErrMsgUpdate))
		return err
	}
	a.setError("")
	a.refreshDetails(ctx, userID)
	return nil
}

// SendEmailOTP mails a code to the account's email address.
func (a *Account) SendEmailOTP(ctx context.Context, userID int64, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		a.mu.Lock()
		if a.details != nil {
			email = a.details.User.Email
		}
		a.mu.Unlock()
	}
	if email == "" {
		return errors.New(errors.CodeValidation, ErrMsgEmail)
	}

	a.setEmail("", "")
	if err := a.remote.SendEmailOTP(ctx, userID, email); err != nil {
		a.logg.Error(ctx, "send email otp failed", err)
		fallback := ErrMsgSendOTP
		if errors.IsCode(err, errors.CodeRemoteRejected) {
			fallback = ErrMsgSendRejected
		}
		a.setEmail(errors.UserMessage(err, fallback), "")
		return err
	}
	return nil
}

func (a *Account) VerifyEmailOTP(ctx context.Context, userID int64, otp string) error {
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return errors.New(errors.CodeValidation, ErrMsgInvalidOTP)
	}

	a.setEmail("", "")
	if err := a.remote.ValidateEmailOTP(ctx, userID, otp); err != nil {
		a.logg.Error(ctx, "validate email otp failed", err)
		fallback := ErrMsgVerifyOTP
		if errors.IsCode(err, errors.CodeRemoteRejected) {
			fallback = ErrMsgInvalidOTP
		}
		a.setEmail(errors.UserMessage(err, fallback), "")
		return err
	}
	a.setEmail("", MsgEmailVerified)
	a.refreshDetails(ctx, userID)
	return nil
}

func (a *Account) ApplyReferral(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New(errors.CodeValidation, "referral code is required")
	}
	if err := a.remote.ApplyReferralCode(ctx, code); err != nil {
		a.logg.Error(ctx, "apply referral code failed", err)
		a.setError(errors.UserMessage(err, ErrMsgReferral))
		return err
	}
	a.mu.Lock()
	a.errMsg = ""
	a.notice = MsgReferralApplied
	a.mu.Unlock()
	return nil
}

// View is the drawer as rendered to clients.
type View struct {
	Details      *citycare.UserDetails `json:"details,omitempty"`
	ReferralCode string                `json:"referralCode,omitempty"`
	Ratings      []citycare.Rating     `json:"ratings"`
	Error        string                `json:"error,omitempty"`
	EmailError   string                `json:"emailError,omitempty"`
	Notice       string                `json:"notice,omitempty"`
}

func (a *Account) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := View{
		ReferralCode: a.referral,
		Ratings:      append([]citycare.Rating{}, a.ratings...),
		Error:        a.errMsg,
		EmailError:   a.emailErr,
		Notice:       a.notice,
	}
	if a.details != nil {
		d := *a.details
		v.Details = &d
	}
	return v
}

func (a *Account) ClearError() {
	a.mu.Lock()
	a.errMsg = ""
	a.emailErr = ""
	a.notice = ""
	a.mu.Unlock()
}

// Reset forgets everything, used on logout.
func (a *Account) Reset() {
	a.mu.Lock()
	a.details = nil
	a.referral = ""
	a.ratings = []citycare.Rating{}
	a.errMsg = ""
	a.emailErr = ""
	a.notice = ""
	a.mu.Unlock()
}

func (a *Account) refreshDetails(ctx context.Context, userID int64) {
	details, err := a.remote.UserDetails(ctx, userID)
	if err != nil {
		a.logg.Warn(ctx, "refresh user details failed")
		return
	}
	a.mu.Lock()
	a.details = details
	a.mu.Unlock()
	a.publish(ctx, details)
}

func (a *Account) publish(ctx context.Context, details *citycare.UserDetails) {
	user := details.User
	if user.Profile == nil {
		user.Profile = details.Profile
	}
	if a.onUser != nil && user.ID != 0 {
		a.onUser(ctx, user)
	}
}

func (a *Account) setError(msg string) {
	a.mu.Lock()
	a.errMsg = msg
	a.notice = ""
	a.mu.Unlock()
}

func (a *Account) setEmail(errMsg, notice string) {
	a.mu.Lock()
	a.emailErr = errMsg
	a.notice = notice
	a.mu.Unlock()
}
