package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/money"
)

type remoteCall struct {
	op       string
	userID   int64
	itemID   int64
	quantity int
}

type fakeRemote struct {
	mu      sync.Mutex
	calls   []remoteCall
	cart    string
	addErr  error
	cartErr error
	updErr  error
	delErr  error
	clrErr  error

	// onCart runs while the fetch is in flight.
	onCart func()
}

func (f *fakeRemote) record(c remoteCall) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeRemote) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

func (f *fakeRemote) Cart(_ context.Context, userID int64) (json.RawMessage, error) {
	f.record(remoteCall{op: "get", userID: userID})
	if f.onCart != nil {
		f.onCart()
	}
	if f.cartErr != nil {
		return nil, f.cartErr
	}
	return json.RawMessage(f.cart), nil
}

func (f *fakeRemote) AddCartItem(_ context.Context, userID int64, req citycare.AddCartItemRequest) error {
	f.record(remoteCall{op: "add", userID: userID, itemID: req.ServiceMenuID, quantity: req.Quantity})
	return f.addErr
}

func (f *fakeRemote) UpdateCartItem(_ context.Context, userID, itemID int64, quantity int) error {
	f.record(remoteCall{op: "update", userID: userID, itemID: itemID, quantity: quantity})
	return f.updErr
}

func (f *fakeRemote) RemoveCartItem(_ context.Context, userID, itemID int64) error {
	f.record(remoteCall{op: "remove", userID: userID, itemID: itemID})
	return f.delErr
}

func (f *fakeRemote) ClearCart(_ context.Context, userID int64) error {
	f.record(remoteCall{op: "clear", userID: userID})
	return f.clrErr
}

func newTestStore(t *testing.T, remote *fakeRemote) (*Store, *localstore.Scope) {
	t.Helper()
	local := localstore.NewScope(localstore.NewMemory(), "device-1")
	store, err := NewStore(Deps{Remote: remote, Local: local})
	require.NoError(t, err)
	return store, local
}

func persisted(t *testing.T, local *localstore.Scope) []Line {
	t.Helper()
	var lines []Line
	err := local.GetJSON(context.Background(), localstore.KeyGuestCart, &lines)
	if errors.Is(err, localstore.ErrNotFound) {
		return []Line{}
	}
	require.NoError(t, err)
	return lines
}

var (
	itemX = Item{Name: "Fan repair", UnitPrice: money.FromRupees(500), MenuID: 101, ServiceID: 1}
	itemY = Item{Name: "Tap fix", UnitPrice: money.FromRupees(300), MenuID: 102, ServiceID: 1}
)

func TestNewStoreRequiresDeps(t *testing.T) {
	_, err := NewStore(Deps{Local: localstore.NewScope(localstore.NewMemory(), "d")})
	assert.Error(t, err)
	_, err = NewStore(Deps{Remote: &fakeRemote{}})
	assert.Error(t, err)
}

func TestGuestAddTotals(t *testing.T) {
	remote := &fakeRemote{}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()

	store.AddItem(ctx, itemX)
	store.AddItem(ctx, itemY)

	assert.Equal(t, money.FromRupees(800), store.Total())
	assert.Equal(t, 2, store.ItemCount())
	assert.Empty(t, remote.ops(), "guests never call the server")
}

func TestGuestPersistenceMatchesMemory(t *testing.T) {
	store, local := newTestStore(t, &fakeRemote{})
	ctx := context.Background()

	steps := []func(){
		func() { store.AddItem(ctx, itemX) },
		func() { store.AddItem(ctx, itemX) },
		func() { store.AddItem(ctx, itemY) },
		func() { store.UpdateQuantity(ctx, "101", 3) },
		func() { store.UpdateQuantity(ctx, "102", -1) },
		func() { store.AddItem(ctx, Item{Name: "Custom", UnitPrice: 9900}) },
		func() { store.RemoveItem(ctx, "101") },
		func() { store.UpdateQuantity(ctx, "missing", 2) },
	}
	for i, step := range steps {
		step()
		assert.Equal(t, store.Lines(), persisted(t, local), "step %d", i)
	}

	store.ClearCart(ctx)
	assert.Empty(t, store.Lines())
	_, err := local.Get(ctx, localstore.KeyGuestCart)
	assert.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestGuestLoadRestoresAndToleratesCorruption(t *testing.T) {
	ctx := context.Background()
	backend := localstore.NewMemory()
	local := localstore.NewScope(backend, "device-1")

	first, err := NewStore(Deps{Remote: &fakeRemote{}, Local: local})
	require.NoError(t, err)
	first.AddItem(ctx, itemX)
	first.AddItem(ctx, itemY)

	second, err := NewStore(Deps{Remote: &fakeRemote{}, Local: local})
	require.NoError(t, err)
	second.Load(ctx)
	assert.Equal(t, first.Lines(), second.Lines())

	require.NoError(t, local.Set(ctx, localstore.KeyGuestCart, "{broken"))
	second.Load(ctx)
	assert.Empty(t, second.Lines())
	assert.NotNil(t, second.Lines())
}

func TestUpdateQuantityZeroDeltaKeepsLine(t *testing.T) {
	remote := &fakeRemote{cart: `[{"id":900,"menuId":101,"serviceId":1,"quantity":2,"menu":{"title":"Fan repair","basePriceInPaisa":50000}}]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)
	require.Len(t, store.Lines(), 1)

	store.UpdateQuantity(ctx, "101", 0)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	last := remote.calls[len(remote.calls)-1]
	assert.Equal(t, remoteCall{op: "update", userID: 9, itemID: 900, quantity: 2}, last)
}

func TestUpdateQuantityClampsAndDeletes(t *testing.T) {
	remote := &fakeRemote{cart: `[{"id":900,"menuId":101,"serviceId":1,"quantity":3,"menu":{"title":"Fan repair","basePriceInPaisa":50000}}]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	store.UpdateQuantity(ctx, "101", -100)

	assert.Empty(t, store.Lines())
	assert.Equal(t, []string{"get", "remove"}, remote.ops())
	assert.Equal(t, int64(900), remote.calls[1].itemID)
	for _, c := range remote.calls {
		assert.GreaterOrEqual(t, c.quantity, 0)
	}
}

func TestAuthAddFailureRollsBack(t *testing.T) {
	remote := &fakeRemote{cart: `[]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.addErr = errors.New("boom")
	store.AddItem(ctx, itemX)

	assert.Empty(t, store.Lines())
	assert.Equal(t, ErrMsgAdd, store.Error())
	assert.Equal(t, []string{"get", "add"}, remote.ops())

	store.ClearError()
	assert.Empty(t, store.Error())
}

func TestAuthAddReplacesWithServerCopy(t *testing.T) {
	remote := &fakeRemote{cart: `[]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.cart = `{"success":true,"data":[{"id":900,"menuId":101,"serviceId":1,"quantity":1,"menu":{"title":"Fan repair (server)","basePriceInPaisa":45000}}]}`
	store.AddItem(ctx, itemX)

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Fan repair (server)", lines[0].Name)
	assert.Equal(t, int64(900), lines[0].CartItemID)
	assert.Equal(t, []string{"get", "add", "get"}, remote.ops())
}

func TestAuthAddWithoutIDsSkipsServer(t *testing.T) {
	remote := &fakeRemote{cart: `[]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	store.AddItem(ctx, Item{Name: "Loose", UnitPrice: 100})

	assert.Len(t, store.Lines(), 1)
	assert.Equal(t, []string{"get"}, remote.ops())
	assert.Empty(t, store.Error())
}

func TestStaleReconcileDiscarded(t *testing.T) {
	remote := &fakeRemote{cart: `[]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.cart = `[{"id":900,"menuId":101,"serviceId":1,"quantity":1,"menu":{"title":"Fan repair","basePriceInPaisa":50000}}]`
	remote.onCart = func() {
		remote.onCart = nil
		// a second add lands while the first reconcile is in flight
		store.mu.Lock()
		store.lines = append(store.lines, Line{Key: "102", Name: "Tap fix", Quantity: 1, UnitPrice: 30000})
		store.seq++
		store.mu.Unlock()
	}
	store.AddItem(ctx, itemX)

	keys := []string{}
	for _, l := range store.Lines() {
		keys = append(keys, l.Key)
	}
	assert.Equal(t, []string{"101", "102"}, keys, "optimistic state survives the stale fetch")
}

func TestRemoveFailureKeepsLineRemoved(t *testing.T) {
	remote := &fakeRemote{cart: `[{"id":900,"menuId":101,"serviceId":1,"quantity":1,"menu":{"title":"Fan repair","basePriceInPaisa":50000}}]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.delErr = errors.New("offline")
	store.RemoveItem(ctx, "101")

	assert.Empty(t, store.Lines())
	assert.Equal(t, ErrMsgRemove, store.Error())
}

func TestUpdateFailureSetsError(t *testing.T) {
	remote := &fakeRemote{cart: `[{"id":900,"menuId":101,"serviceId":1,"quantity":1,"menu":{"title":"Fan repair","basePriceInPaisa":50000}}]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.updErr = errors.New("offline")
	store.UpdateQuantity(ctx, "101", 1)

	require.Len(t, store.Lines(), 1)
	assert.Equal(t, 2, store.Lines()[0].Quantity)
	assert.Equal(t, ErrMsgUpdate, store.Error())
}

func TestAuthClearFailure(t *testing.T) {
	remote := &fakeRemote{cart: `[]`, clrErr: errors.New("offline")}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	store.ClearCart(ctx)
	assert.Equal(t, ErrMsgClear, store.Error())
	assert.Empty(t, store.Lines())
}

func TestSwitchSessionNeverMerges(t *testing.T) {
	remote := &fakeRemote{cart: `[{"id":900,"menuId":201,"serviceId":2,"quantity":1,"menu":{"title":"AC service","basePriceInPaisa":70000}}]`}
	store, local := newTestStore(t, remote)
	ctx := context.Background()

	store.AddItem(ctx, itemX)
	store.SwitchSession(ctx, 9)
	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "201", lines[0].Key)

	store.SwitchSession(ctx, 0)
	lines = store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "101", lines[0].Key)
	assert.Equal(t, lines, persisted(t, local))
}

func TestReconcileFailureKeepsOptimisticState(t *testing.T) {
	remote := &fakeRemote{cart: `[]`}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()
	store.SwitchSession(ctx, 9)

	remote.cartErr = errors.New("timeout")
	store.AddItem(ctx, itemX)

	assert.Len(t, store.Lines(), 1)
	assert.Equal(t, ErrMsgSync, store.Error())
}

// orderedRemote holds each server add until its gate opens and each cart
// fetch until the test releases it. A fetch snapshots the server cart when it
// starts.
type orderedRemote struct {
	fakeRemote

	smu      sync.Mutex
	menus    []int64
	hold     bool
	addGates map[int64]chan struct{}
	fetches  chan chan struct{}
}

func newOrderedRemote(menus ...int64) *orderedRemote {
	r := &orderedRemote{addGates: map[int64]chan struct{}{}, fetches: make(chan chan struct{})}
	for _, m := range menus {
		r.addGates[m] = make(chan struct{})
	}
	return r
}

func (r *orderedRemote) AddCartItem(_ context.Context, _ int64, req citycare.AddCartItemRequest) error {
	<-r.addGates[req.ServiceMenuID]
	r.smu.Lock()
	r.menus = append(r.menus, req.ServiceMenuID)
	r.smu.Unlock()
	return nil
}

func (r *orderedRemote) Cart(context.Context, int64) (json.RawMessage, error) {
	r.smu.Lock()
	rows := make([]map[string]any, 0, len(r.menus))
	for i, m := range r.menus {
		rows = append(rows, map[string]any{
			"id": 900 + i, "menuId": m, "serviceId": 1, "quantity": 1,
			"menu": map[string]any{"title": fmt.Sprintf("menu %d", m), "basePriceInPaisa": 10000},
		})
	}
	hold := r.hold
	r.smu.Unlock()

	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	if hold {
		release := make(chan struct{})
		r.fetches <- release
		<-release
	}
	return raw, nil
}

func TestConcurrentAddsKeepNewestServerCopy(t *testing.T) {
	cases := []struct {
		name       string
		firstDoneA bool
	}{
		{name: "older fetch returns first", firstDoneA: true},
		{name: "newer fetch returns first", firstDoneA: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			remote := newOrderedRemote(101, 102)
			local := localstore.NewScope(localstore.NewMemory(), "device-1")
			store, err := NewStore(Deps{Remote: remote, Local: local})
			require.NoError(t, err)
			ctx := context.Background()
			store.SwitchSession(ctx, 9)

			remote.smu.Lock()
			remote.hold = true
			remote.smu.Unlock()

			var wg sync.WaitGroup
			wg.Add(2)
			go func() { defer wg.Done(); store.AddItem(ctx, itemX) }()
			go func() { defer wg.Done(); store.AddItem(ctx, itemY) }()
			require.Eventually(t, func() bool { return store.ItemCount() == 2 }, time.Second, time.Millisecond)

			// A's fetch sees only A; B's fetch sees both.
			close(remote.addGates[101])
			releaseA := <-remote.fetches
			close(remote.addGates[102])
			releaseB := <-remote.fetches

			if tc.firstDoneA {
				close(releaseA)
				require.Eventually(t, func() bool { return len(store.Lines()) == 1 }, time.Second, time.Millisecond)
				close(releaseB)
			} else {
				close(releaseB)
				require.Eventually(t, func() bool { return store.Lines()[0].CartItemID != 0 }, time.Second, time.Millisecond)
				close(releaseA)
			}
			wg.Wait()

			keys := []string{}
			for _, l := range store.Lines() {
				keys = append(keys, l.Key)
			}
			assert.Equal(t, []string{"101", "102"}, keys)
			assert.Empty(t, store.Error())
		})
	}
}
