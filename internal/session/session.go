// Package session owns a device's signed-in identity: OTP login, logout,
// rehydration from local storage and the storefront's visibility flags.
package session

import (
	"context"
	stdErrors "errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/citycare/storefront/pkg/auth"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/enums"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/logger"
)

const (
	MinPhoneDigits = 10

	ErrMsgPhone   = "Please enter a valid 10-digit phone number."
	ErrMsgOTP     = "Please enter the 4-digit OTP."
	ErrMsgSendOTP = "Failed to send OTP. Please retry."
	ErrMsgLogin   = "Please enter a valid OTP."
)

var otpPattern = regexp.MustCompile(`^\d{4}$`)

type Remote interface {
	SendOTP(ctx context.Context, phone string) error
	Login(ctx context.Context, phone, otp string) (*citycare.LoginResult, error)
}

type Local interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// ChangeFunc is told the new user id (zero for guest) after every identity change.
type ChangeFunc func(ctx context.Context, userID int64)

type Deps struct {
	Remote   Remote
	Local    Local
	Logger   *logger.Logger
	OnChange ChangeFunc
	Now      func() time.Time
}

// Manager is one device's session.
type Manager struct {
	mu     sync.RWMutex
	user   *citycare.User
	token  string
	flags  map[enums.UIFlag]bool
	errMsg string

	remote   Remote
	local    Local
	logg     *logger.Logger
	onChange ChangeFunc
	now      func() time.Time
}

func NewManager(deps Deps) (*Manager, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("session remote required")
	}
	if deps.Local == nil {
		return nil, fmt.Errorf("session local storage required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		flags:    map[enums.UIFlag]bool{},
		remote:   deps.Remote,
		local:    deps.Local,
		logg:     logg,
		onChange: deps.OnChange,
		now:      now,
	}, nil
}

// Rehydrate restores the cached user and token. A missing or unreadable user,
// or a token whose expiry has passed, leaves the device in guest mode.
func (m *Manager) Rehydrate(ctx context.Context) {
	var user citycare.User
	err := m.local.GetJSON(ctx, localstore.KeyUser, &user)
	switch {
	case stdErrors.Is(err, localstore.ErrNotFound):
		m.setIdentity(nil, "")
		m.notify(ctx, 0)
		return
	case err != nil || user.ID == 0:
		m.logg.Warn(ctx, "cached user unreadable, starting as guest")
		m.dropCached(ctx)
		m.notify(ctx, 0)
		return
	}

	token, err := m.local.Get(ctx, localstore.KeyToken)
	if err != nil && !stdErrors.Is(err, localstore.ErrNotFound) {
		m.logg.Error(ctx, "read cached token failed", err)
	}
	if token != "" {
		if err := auth.CheckToken(token, m.now()); stdErrors.Is(err, auth.ErrTokenExpired) {
			m.logg.Info(ctx, "cached token expired, starting as guest")
			m.dropCached(ctx)
			m.notify(ctx, 0)
			return
		}
	}

	m.setIdentity(&user, token)
	m.notify(ctx, user.ID)
}

// SendOTP texts a login code. Short numbers are rejected before any call.
func (m *Manager) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if countDigits(phone) < MinPhoneDigits {
		return m.failLogin(errors.New(errors.CodeValidation, ErrMsgPhone), ErrMsgPhone)
	}
	if err := m.remote.SendOTP(ctx, phone); err != nil {
		m.logg.Error(ctx, "send otp failed", err)
		return m.failLogin(err, ErrMsgSendOTP)
	}
	m.setError("")
	return nil
}

// Login exchanges phone and OTP for a session, caches it and announces the
// new identity. The login modal stays as it is; callers decide when to close it.
func (m *Manager) Login(ctx context.Context, phone, otp string) (*citycare.User, error) {
	phone = strings.TrimSpace(phone)
	otp = strings.TrimSpace(otp)
	if countDigits(phone) < MinPhoneDigits {
		return nil, m.failLogin(errors.New(errors.CodeValidation, ErrMsgPhone), ErrMsgPhone)
	}
	if !otpPattern.MatchString(otp) {
		return nil, m.failLogin(errors.New(errors.CodeValidation, ErrMsgOTP), ErrMsgOTP)
	}

	result, err := m.remote.Login(ctx, phone, otp)
	if err != nil {
		m.logg.Error(ctx, "login failed", err)
		return nil, m.failLogin(err, ErrMsgLogin)
	}

	user := result.User
	if err := multierr.Append(
		m.local.SetJSON(ctx, localstore.KeyUser, user),
		m.local.Set(ctx, localstore.KeyToken, result.Token),
	); err != nil {
		m.logg.Error(ctx, "cache session failed", err)
	}
	m.setIdentity(&user, result.Token)
	m.setError("")
	ctx = m.logg.WithUserID(ctx, fmt.Sprint(user.ID))
	m.logg.Info(ctx, "customer logged in")
	m.notify(ctx, user.ID)

	out := user
	return &out, nil
}

// Logout forgets the identity, clears the cached keys and closes the profile
// and wallet drawers. Storage errors are reported after the in-memory logout.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.errMsg = ""
	m.flags[enums.UIFlagProfileDrawer] = false
	m.flags[enums.UIFlagWalletDrawer] = false
	m.mu.Unlock()

	err := m.dropCached(ctx)
	m.notify(ctx, 0)
	return err
}

// UpdateUser applies fn to the cached user and persists the result.
func (m *Manager) UpdateUser(ctx context.Context, fn func(*citycare.User)) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return errors.New(errors.CodeUnauthorized, "login required")
	}
	updated := *m.user
	fn(&updated)
	m.user = &updated
	m.mu.Unlock()

	return m.local.SetJSON(ctx, localstore.KeyUser, updated)
}

// User returns a copy of the signed-in user.
func (m *Manager) User() (citycare.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return citycare.User{}, false
	}
	return *m.user, true
}

// UserID is zero for guests.
func (m *Manager) UserID() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return 0
	}
	return m.user.ID
}

// Token is the bearer token for remote calls, empty for guests.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) IsAuthenticated() bool {
	return m.UserID() != 0
}

func (m *Manager) SetFlag(flag enums.UIFlag, open bool) {
	m.mu.Lock()
	m.flags[flag] = open
	m.mu.Unlock()
}

func (m *Manager) Flag(flag enums.UIFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[flag]
}

func (m *Manager) Error() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

func (m *Manager) ClearError() {
	m.setError("")
}

// View is the session as rendered to clients.
type View struct {
	Authenticated bool            `json:"authenticated"`
	User          *citycare.User  `json:"user,omitempty"`
	Flags         map[string]bool `json:"flags"`
	Error         string          `json:"error,omitempty"`
}

func (m *Manager) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v := View{Flags: map[string]bool{}, Error: m.errMsg}
	for _, f := range enums.UIFlags() {
		v.Flags[f.String()] = m.flags[f]
	}
	if m.user != nil {
		u := *m.user
		v.User = &u
		v.Authenticated = true
	}
	return v
}

func (m *Manager) setIdentity(user *citycare.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.mu.Unlock()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}

func (m *Manager) failLogin(err error, fallback string) error {
	m.setError(errors.UserMessage(err, fallback))
	return err
}

func (m *Manager) dropCached(ctx context.Context) error {
	err := multierr.Combine(
		m.local.Delete(ctx, localstore.KeyUser),
		m.local.Delete(ctx, localstore.KeyToken),
	)
	if err != nil {
		m.logg.Error(ctx, "clear cached session failed", err)
	}
	return err
}

func (m *Manager) notify(ctx context.Context, userID int64) {
	if m.onChange != nil {
		m.onChange(ctx, userID)
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// NeedsDetails reports whether a freshly logged-in user still has to give a
// name and email before the login modal can close.
func NeedsDetails(u citycare.User) bool {
	return strings.TrimSpace(u.FullName) == "" || strings.TrimSpace(u.Email) == ""
}
