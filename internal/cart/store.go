package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/localstore"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/metrics"
	"github.com/citycare/storefront/pkg/money"
)

// User-visible failure strings.
const (
	ErrMsgAdd    = "Failed to add item to cart. Please try again."
	ErrMsgRemove = "Failed to remove item. Please try again."
	ErrMsgUpdate = "Failed to update quantity. Please check your connection."
	ErrMsgClear  = "Failed to clear cart."
	ErrMsgSync   = "Failed to refresh cart. Please check your connection."
)

// Remote is the server cart API.
type Remote interface {
	Cart(ctx context.Context, userID int64) (json.RawMessage, error)
	AddCartItem(ctx context.Context, userID int64, req citycare.AddCartItemRequest) error
	UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error
}

// Local is the device's durable storage.
type Local interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Deps wires a Store.
type Deps struct {
	Remote  Remote
	Local   Local
	Images  ImageResolver
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
}

// Store holds one device's cart. The mutex guards memory only and is never
// held across a remote call. seq counts local mutations; fetchGen numbers each
// server fetch and appliedGen is the newest fetch already applied.
type Store struct {
	mu         sync.Mutex
	lines      []Line
	userID     int64
	errMsg     string
	seq        uint64
	fetchGen   uint64
	appliedGen uint64

	// persistMu serializes guest writes so the last write carries the newest snapshot.
	persistMu sync.Mutex

	remote  Remote
	local   Local
	images  ImageResolver
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewStore builds an empty guest cart.
func NewStore(deps Deps) (*Store, error) {
	if deps.Remote == nil {
		return nil, fmt.Errorf("cart remote required")
	}
	if deps.Local == nil {
		return nil, fmt.Errorf("cart local storage required")
	}
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		lines:   []Line{},
		remote:  deps.Remote,
		local:   deps.Local,
		images:  deps.Images,
		logg:    logg,
		metrics: deps.Metrics,
	}, nil
}

// Lines returns a snapshot of the cart.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// Total is the sum of line subtotals.
func (s *Store) Total() money.Paisa {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total money.Paisa
	for _, l := range s.lines {
		total += l.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// UserID is the signed-in user the cart belongs to, zero for guests.
func (s *Store) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// AddItem increments the matching line or appends one with quantity 1, then
// syncs with the server for signed-in users.
func (s *Store) AddItem(ctx context.Context, item Item) {
	key := item.Key()

	s.mu.Lock()
	found := false
	for i := range s.lines {
		if s.lines[i].Key == key {
			s.lines[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		s.lines = append(s.lines, Line{
			Key:         key,
			Name:        item.Name,
			UnitPrice:   item.UnitPrice,
			Quantity:    1,
			ImageURL:    item.ImageURL,
			Description: item.Description,
			MenuID:      item.MenuID,
			ServiceID:   item.ServiceID,
		})
	}
	s.seq++
	userID := s.userID
	if userID != 0 {
		s.errMsg = ""
	}
	s.mu.Unlock()

	if userID == 0 {
		s.persistGuest(ctx)
		return
	}

	if item.MenuID == 0 || item.ServiceID == 0 {
		s.logg.Warn(s.logg.WithField(ctx, "line_key", key), "missing service id or menu id for cart add")
		return
	}

	err := s.remote.AddCartItem(ctx, userID, citycare.AddCartItemRequest{
		ServiceID:     item.ServiceID,
		ServiceMenuID: item.MenuID,
		Quantity:      1,
	})
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "line_key", key), "add cart item failed", err)
		s.mu.Lock()
		if s.userID == userID {
			s.lines = removeKey(s.lines, key)
			s.errMsg = ErrMsgAdd
			s.seq++
		}
		s.mu.Unlock()
		s.metrics.IncReconcile(metrics.ReconcileRolledBack)
		return
	}

	s.reconcile(ctx, userID)
}

// RemoveItem drops the line immediately. A failed server delete leaves the
// line removed locally.
func (s *Store) RemoveItem(ctx context.Context, key string) {
	s.mu.Lock()
	remoteID := keyAsID(key)
	for _, l := range s.lines {
		if l.Key == key {
			remoteID = l.remoteID()
			break
		}
	}
	s.lines = removeKey(s.lines, key)
	s.seq++
	userID := s.userID
	if userID != 0 {
		s.errMsg = ""
	}
	s.mu.Unlock()

	if userID == 0 {
		s.persistGuest(ctx)
		return
	}
	if remoteID == 0 {
		s.logg.Warn(s.logg.WithField(ctx, "line_key", key), "cart line has no server id, skipping delete")
		return
	}
	if err := s.remote.RemoveCartItem(ctx, userID, remoteID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "line_key", key), "remove cart item failed", err)
		s.setError(userID, ErrMsgRemove)
	}
}

// UpdateQuantity applies max(0, qty+delta). Zero removes the line and issues a
// server delete; anything else issues an update, including an unchanged quantity.
func (s *Store) UpdateQuantity(ctx context.Context, key string, delta int) {
	s.mu.Lock()
	idx := -1
	for i := range s.lines {
		if s.lines[i].Key == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	line := s.lines[idx]
	newQty := line.Quantity + delta
	if newQty < 0 {
		newQty = 0
	}
	if newQty == 0 {
		s.lines = removeKey(s.lines, key)
	} else {
		s.lines[idx].Quantity = newQty
	}
	s.seq++
	userID := s.userID
	if userID != 0 {
		s.errMsg = ""
	}
	s.mu.Unlock()

	if userID == 0 {
		s.persistGuest(ctx)
		return
	}

	remoteID := line.remoteID()
	if remoteID == 0 {
		s.logg.Warn(s.logg.WithField(ctx, "line_key", key), "cart line has no server id, skipping update")
		return
	}
	var err error
	if newQty == 0 {
		err = s.remote.RemoveCartItem(ctx, userID, remoteID)
	} else {
		err = s.remote.UpdateCartItem(ctx, userID, remoteID, newQty)
	}
	if err != nil {
		s.logg.Error(s.logg.WithField(ctx, "line_key", key), "update cart quantity failed", err)
		s.setError(userID, ErrMsgUpdate)
	}
}

// ClearCart empties the cart. Guests lose their stored cart key.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.lines = []Line{}
	s.seq++
	userID := s.userID
	if userID != 0 {
		s.errMsg = ""
	}
	s.mu.Unlock()

	if userID == 0 {
		s.persistMu.Lock()
		defer s.persistMu.Unlock()
		if err := s.local.Delete(ctx, localstore.KeyGuestCart); err != nil {
			s.logg.Error(ctx, "delete guest cart failed", err)
		}
		return
	}
	if err := s.remote.ClearCart(ctx, userID); err != nil {
		s.logg.Error(ctx, "clear cart failed", err)
		s.setError(userID, ErrMsgClear)
	}
}

// Load fills the cart from the source that applies to the current session:
// the server for signed-in users, local storage for guests.
func (s *Store) Load(ctx context.Context) {
	userID := s.UserID()
	if userID != 0 {
		s.reconcile(ctx, userID)
		return
	}

	var stored []Line
	err := s.local.GetJSON(ctx, localstore.KeyGuestCart, &stored)
	switch {
	case errors.Is(err, localstore.ErrNotFound):
		stored = []Line{}
	case err != nil:
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "guest cart unreadable, starting empty")
		stored = []Line{}
	}
	if stored == nil {
		stored = []Line{}
	}

	s.mu.Lock()
	if s.userID == 0 {
		s.lines = stored
		s.seq++
	}
	s.mu.Unlock()
}

// SwitchSession moves the cart to another identity (zero for guest) and
// reloads from that identity's source. Guest and server carts never merge.
func (s *Store) SwitchSession(ctx context.Context, userID int64) {
	s.mu.Lock()
	s.userID = userID
	s.lines = []Line{}
	s.errMsg = ""
	s.seq++
	s.mu.Unlock()

	s.Load(ctx)
}

// reconcile replaces the list with a fresh server copy. The copy is dropped
// when a local mutation or session switch happened while it was in flight, or
// when a fetch that started later has already been applied.
func (s *Store) reconcile(ctx context.Context, userID int64) {
	s.mu.Lock()
	startSeq := s.seq
	s.fetchGen++
	gen := s.fetchGen
	s.mu.Unlock()

	raw, err := s.remote.Cart(ctx, userID)
	if err != nil {
		s.logg.Error(ctx, "refresh cart failed", err)
		s.metrics.IncReconcile(metrics.ReconcileFailed)
		s.setError(userID, ErrMsgSync)
		return
	}
	fresh := Parse(raw, s.images)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != startSeq || s.userID != userID || gen < s.appliedGen {
		s.metrics.IncReconcile(metrics.ReconcileStale)
		return
	}
	s.lines = fresh
	s.appliedGen = gen
	s.metrics.IncReconcile(metrics.ReconcileApplied)
}

func (s *Store) setError(userID int64, msg string) {
	s.mu.Lock()
	if s.userID == userID {
		s.errMsg = msg
	}
	s.mu.Unlock()
}

func (s *Store) persistGuest(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	if s.userID != 0 {
		s.mu.Unlock()
		return
	}
	snapshot := cloneLines(s.lines)
	s.mu.Unlock()

	if err := s.local.SetJSON(ctx, localstore.KeyGuestCart, snapshot); err != nil {
		s.logg.Error(ctx, "persist guest cart failed", err)
	}
}

func removeKey(lines []Line, key string) []Line {
	out := lines[:0:0]
	for _, l := range lines {
		if l.Key != key {
			out = append(out, l)
		}
	}
	if out == nil {
		out = []Line{}
	}
	return out
}
