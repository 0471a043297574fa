// Package storefront assembles one device's storefront: session, cart,
// checkout and the account drawers, all talking to the CityCare API with the
// device's own bearer token.
package storefront

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/citycare/storefront/internal/addresses"
	"github.com/citycare/storefront/internal/bookings"
	"github.com/citycare/storefront/internal/cart"
	"github.com/citycare/storefront/internal/checkout"
	"github.com/citycare/storefront/internal/profile"
	"github.com/citycare/storefront/internal/session"
	"github.com/citycare/storefront/internal/wallet"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/enums"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/metrics"
	"github.com/citycare/storefront/pkg/payments"
)

// Dependencies are shared by every device.
type Dependencies struct {
	API         *citycare.Client
	Store       localstore.Store
	Gateway     *payments.Builder
	Geocoder    addresses.Geocoder
	Images      citycare.Images
	Checkout    config.CheckoutConfig
	Logger      *logger.Logger
	CartMetrics *metrics.CartMetrics
	Validate    *validator.Validate
	Now         func() time.Time
}

func (d Dependencies) validate() error {
	if d.API == nil {
		return fmt.Errorf("api client required")
	}
	if d.Store == nil {
		return fmt.Errorf("local store required")
	}
	if d.Gateway == nil {
		return fmt.Errorf("payment gateway required")
	}
	return nil
}

// State is everything the storefront keeps for one device.
type State struct {
	DeviceID  string
	Session   *session.Manager
	Cart      *cart.Store
	Checkout  *checkout.Wizard
	Addresses *addresses.Book
	Bookings  *bookings.Desk
	Wallet    *wallet.Purse
	Profile   *profile.Account

	logg     *logger.Logger
	lastSeen atomic.Int64
}

// tokenRef lets the API client read the session's token before the session
// itself exists.
type tokenRef struct {
	mu  sync.RWMutex
	src citycare.TokenSource
}

func (t *tokenRef) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.src == nil {
		return ""
	}
	return t.src.Token()
}

func (t *tokenRef) bind(src citycare.TokenSource) {
	t.mu.Lock()
	t.src = src
	t.mu.Unlock()
}

// NewState wires a device and restores its cached session and cart.
func NewState(ctx context.Context, deviceID string, deps Dependencies) (*State, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deviceID == "" {
		return nil, fmt.Errorf("device id required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	tokens := &tokenRef{}
	api := deps.API.ForSession(tokens)
	local := localstore.NewScope(deps.Store, deviceID)
	s := &State{DeviceID: deviceID, logg: logg}

	mgr, err := session.NewManager(session.Deps{
		Remote:   api,
		Local:    local,
		Logger:   logg,
		OnChange: s.identityChanged,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	tokens.bind(mgr)
	s.Session = mgr

	if s.Cart, err = cart.NewStore(cart.Deps{
		Remote:  api,
		Local:   local,
		Images:  deps.Images.URL,
		Logger:  logg,
		Metrics: deps.CartMetrics,
	}); err != nil {
		return nil, err
	}

	addrSvc, err := addresses.NewService(api, deps.Geocoder)
	if err != nil {
		return nil, err
	}
	s.Addresses = addresses.NewBook(addrSvc, logg)

	if s.Checkout, err = checkout.NewWizard(checkout.Deps{
		Identity:  s.customer,
		Cart:      s.Cart,
		Addresses: addrSvc,
		Remote:    api,
		Gateway:   deps.Gateway,
		Config:    deps.Checkout,
		Images:    deps.Images.URL,
		Logger:    logg,
		Now:       now,
	}); err != nil {
		return nil, err
	}

	if s.Bookings, err = bookings.NewDesk(bookings.Deps{
		Remote:   api,
		Logger:   logg,
		Location: deps.Checkout.Location(),
		Now:      now,
	}); err != nil {
		return nil, err
	}

	if s.Wallet, err = wallet.NewPurse(wallet.Deps{
		Remote:  api,
		Gateway: deps.Gateway,
		Logger:  logg,
		Now:     now,
	}); err != nil {
		return nil, err
	}

	if s.Profile, err = profile.NewAccount(profile.Deps{
		Remote:   api,
		Validate: deps.Validate,
		Logger:   logg,
		OnUser:   s.userRefreshed,
	}); err != nil {
		return nil, err
	}

	s.Touch(now())
	s.Session.Rehydrate(logg.WithDeviceID(ctx, deviceID))
	return s, nil
}

// AddToCart adds one unit and opens the cart drawer.
func (s *State) AddToCart(ctx context.Context, item cart.Item) {
	s.Session.SetFlag(enums.UIFlagCartDrawer, true)
	s.Cart.AddItem(ctx, item)
}

// Login signs in and closes the login modal unless the account still needs
// a name or email.
func (s *State) Login(ctx context.Context, phone, otp string) (*citycare.User, bool, error) {
	user, err := s.Session.Login(ctx, phone, otp)
	if err != nil {
		return nil, false, err
	}
	needsDetails := session.NeedsDetails(*user)
	if !needsDetails {
		s.Session.SetFlag(enums.UIFlagLoginModal, false)
	}
	return user, needsDetails, nil
}

// Touch records activity for idle eviction.
func (s *State) Touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}

func (s *State) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// identityChanged moves every per-user part of the device to the new identity.
func (s *State) identityChanged(ctx context.Context, userID int64) {
	s.Checkout.Reset()
	if userID == 0 {
		s.Addresses.Reset()
		s.Bookings.Reset()
		s.Wallet.Reset()
		s.Profile.Reset()
	}
	s.Cart.SwitchSession(ctx, userID)
}

func (s *State) userRefreshed(ctx context.Context, user citycare.User) {
	if s.Session.UserID() != user.ID {
		return
	}
	err := s.Session.UpdateUser(ctx, func(u *citycare.User) {
		u.FullName = user.FullName
		u.Email = user.Email
		u.PhoneNo = firstNonEmpty(user.PhoneNo, u.PhoneNo)
		u.IsEmailValid = user.IsEmailValid
		if user.Profile != nil {
			u.Profile = user.Profile
		}
	})
	if err != nil {
		s.logg.Warn(ctx, "cache refreshed user failed")
	}
}

func (s *State) customer() (checkout.Customer, bool) {
	u, ok := s.Session.User()
	if !ok {
		return checkout.Customer{}, false
	}
	return checkout.Customer{ID: u.ID, FullName: u.FullName, Email: u.Email, PhoneNo: u.PhoneNo}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
