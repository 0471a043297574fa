package addresses

import (
	"context"
	stdErrors "errors"
	"sync"

	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/logger"
	"github.com/citycare/storefront/pkg/maps"
	"github.com/citycare/storefront/pkg/types"
)

// Book is one device's view of its saved addresses, with its own error slot.
type Book struct {
	mu     sync.Mutex
	list   []types.Address
	errMsg string

	svc  Service
	logg *logger.Logger
}

func NewBook(svc Service, logg *logger.Logger) *Book {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Book{list: []types.Address{}, svc: svc, logg: logg}
}

// Addresses returns a snapshot of the loaded list.
func (b *Book) Addresses() []types.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]types.Address, len(b.list))
	copy(out, b.list)
	return out
}

func (b *Book) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errMsg
}

func (b *Book) ClearError() {
	b.set(nil, "")
}

// Reset forgets everything, used on logout.
func (b *Book) Reset() {
	b.set([]types.Address{}, "")
}

// Load refreshes the list. A failure keeps the previous list.
func (b *Book) Load(ctx context.Context, userID int64) []types.Address {
	list, err := b.svc.List(ctx, userID)
	if err != nil {
		b.fail(ctx, "load addresses", err, ErrMsgLoad)
		return b.Addresses()
	}
	b.set(list, "")
	return list
}

// Default fetches the user's default address. Nil means none is set or the
// lookup failed, in which case the error slot is set.
func (b *Book) Default(ctx context.Context, userID int64) *types.Address {
	addr, err := b.svc.Default(ctx, userID)
	if err != nil {
		b.fail(ctx, "load default address", err, ErrMsgLoad)
		return nil
	}
	return addr
}

// Add saves a new address and reloads. Blank line 1 is ignored.
func (b *Book) Add(ctx context.Context, userID int64, draft Draft) {
	if err := b.svc.Create(ctx, userID, draft); err != nil {
		if stdErrors.Is(err, ErrLineRequired) {
			return
		}
		b.fail(ctx, "create address", err, ErrMsgAdd)
		return
	}
	b.Load(ctx, userID)
}

func (b *Book) Update(ctx context.Context, userID, addressID int64, draft Draft) {
	if err := b.svc.Update(ctx, addressID, draft); err != nil {
		if stdErrors.Is(err, ErrLineRequired) {
			return
		}
		b.fail(ctx, "update address", err, ErrMsgUpdate)
		return
	}
	b.Load(ctx, userID)
}

func (b *Book) Remove(ctx context.Context, userID, addressID int64) {
	if err := b.svc.Delete(ctx, addressID); err != nil {
		b.fail(ctx, "delete address", err, ErrMsgDelete)
		return
	}
	b.Load(ctx, userID)
}

func (b *Book) MakeDefault(ctx context.Context, userID, addressID int64) {
	if err := b.svc.SetDefault(ctx, userID, addressID); err != nil {
		b.fail(ctx, "set default address", err, ErrMsgUpdate)
		return
	}
	b.Load(ctx, userID)
}

// Locate prefills a draft from a coordinate. On failure the error slot is set
// and an empty draft carrying only the coordinate is returned.
func (b *Book) Locate(ctx context.Context, at maps.LatLng) Draft {
	draft, err := b.svc.Locate(ctx, at)
	if err != nil {
		b.fail(ctx, "reverse geocode", err, ErrMsgLocate)
		return Draft{Label: DefaultLabel, Latitude: roundCoordinate(at.Latitude), Longitude: roundCoordinate(at.Longitude)}
	}
	return draft
}

func (b *Book) fail(ctx context.Context, op string, err error, fallback string) {
	b.logg.Error(ctx, op, err)
	b.mu.Lock()
	b.errMsg = errors.UserMessage(err, fallback)
	b.mu.Unlock()
}

func (b *Book) set(list []types.Address, msg string) {
	b.mu.Lock()
	if list != nil {
		b.list = list
	}
	b.errMsg = msg
	b.mu.Unlock()
}
