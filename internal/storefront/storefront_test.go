package storefront

import (
	"context"
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycare/storefront/internal/cart"
	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/config"
	"github.com/citycare/storefront/pkg/enums"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/money"
	"github.com/citycare/storefront/pkg/payments"
)

type fakeAPI struct {
	mu         sync.Mutex
	cartAuth   []string
	loginEmail string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/login":
		_, _ = w.Write([]byte(`{"success":true,"data":{"user":{"id":7,"fullName":"Asha Rao","email":"` + f.loginEmail + `"},"token":"tok-7"}}`))
	case "/cart/7":
		f.mu.Lock()
		f.cartAuth = append(f.cartAuth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`[{"id":1,"menuId":1001,"serviceId":11,"quantity":2,"menu":{"title":"1 BHK Deep Clean","basePriceInPaisa":40000}}]`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
	}
}

func newDeps(t *testing.T, api *fakeAPI, clock func() time.Time) Dependencies {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	client, err := citycare.NewClient(citycare.WithBaseURL(srv.URL), citycare.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return Dependencies{
		API:      client,
		Store:    localstore.NewMemory(),
		Gateway:  payments.NewBuilder(config.GatewayConfig{FallbackKey: "rzp_test"}),
		Images:   citycare.NewImages("https://img.example.com"),
		Checkout: config.CheckoutConfig{PlatformFeePaisa: 4900, FirstSlotHour: 9, LastSlotHour: 20, Timezone: "Asia/Kolkata"},
		Now:      clock,
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestNewStateRequiresDependencies(t *testing.T) {
	_, err := NewState(context.Background(), "d1", Dependencies{})
	require.Error(t, err)

	deps := newDeps(t, &fakeAPI{}, fixedClock())
	_, err = NewState(context.Background(), "", deps)
	require.Error(t, err)
}

func TestGuestCartSurvivesNewState(t *testing.T) {
	deps := newDeps(t, &fakeAPI{}, fixedClock())
	ctx := context.Background()

	s, err := NewState(ctx, "device-1", deps)
	require.NoError(t, err)
	s.AddToCart(ctx, cart.Item{Name: "AC Service", UnitPrice: money.FromRupees(599), MenuID: 2101, ServiceID: 21})
	assert.True(t, s.Session.Flag(enums.UIFlagCartDrawer))

	again, err := NewState(ctx, "device-1", deps)
	require.NoError(t, err)
	lines := again.Cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "AC Service", lines[0].Name)

	other, err := NewState(ctx, "device-2", deps)
	require.NoError(t, err)
	assert.Empty(t, other.Cart.Lines())
}

func TestLoginSwitchesCartAndSendsToken(t *testing.T) {
	api := &fakeAPI{loginEmail: "asha@example.com"}
	deps := newDeps(t, api, fixedClock())
	ctx := context.Background()

	s, err := NewState(ctx, "device-1", deps)
	require.NoError(t, err)
	s.Session.SetFlag(enums.UIFlagLoginModal, true)

	user, needsDetails, err := s.Login(ctx, "9876543210", "1234")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.False(t, needsDetails)
	assert.False(t, s.Session.Flag(enums.UIFlagLoginModal))

	lines := s.Cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	api.mu.Lock()
	assert.Contains(t, api.cartAuth, "Bearer tok-7")
	api.mu.Unlock()

	require.NoError(t, s.Session.Logout(ctx))
	assert.Empty(t, s.Cart.Lines())
	assert.Zero(t, s.Cart.UserID())
}

func TestLoginWithoutEmailKeepsModalOpen(t *testing.T) {
	deps := newDeps(t, &fakeAPI{}, fixedClock())
	ctx := context.Background()

	s, err := NewState(ctx, "device-1", deps)
	require.NoError(t, err)
	s.Session.SetFlag(enums.UIFlagLoginModal, true)

	_, needsDetails, err := s.Login(ctx, "9876543210", "1234")
	require.NoError(t, err)
	assert.True(t, needsDetails)
	assert.True(t, s.Session.Flag(enums.UIFlagLoginModal))
}

func TestRegistryReusesAndSweeps(t *testing.T) {
	now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	reg, err := NewRegistry(newDeps(t, &fakeAPI{}, clock))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := reg.Get(ctx, "device-a")
	require.NoError(t, err)
	again, err := reg.Get(ctx, "device-a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	mu.Lock()
	now = now.Add(20 * time.Minute)
	mu.Unlock()
	_, err = reg.Get(ctx, "device-b")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	assert.Equal(t, 1, reg.Sweep(10*time.Minute))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryCloseCombinesErrors(t *testing.T) {
	reg, err := NewRegistry(newDeps(t, &fakeAPI{}, fixedClock()))
	require.NoError(t, err)

	var order []string
	reg.OnClose(func() error { order = append(order, "redis"); return stdErrors.New("redis down") })
	reg.OnClose(func() error { order = append(order, "db"); return stdErrors.New("db down") })

	err = reg.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, []string{"db", "redis"}, order)
	assert.NoError(t, reg.Close())
}
