package checkout

import (
	"context"
	"math/rand/v2"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/citycare/storefront/pkg/money"
)

const maxSuggestions = 6

// Suggestion is a menu from a service already in the cart.
type Suggestion struct {
	ServiceID   int64       `json:"serviceId"`
	MenuID      int64       `json:"menuId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Price       money.Paisa `json:"price"`
	ImageURL    string      `json:"image"`
}

// Suggestions offers up to six menus from the cart's services that are not in
// the cart yet, in random order. Services whose menus fail to load are skipped.
func (w *Wizard) Suggestions(ctx context.Context) []Suggestion {
	lines := w.cart.Lines()
	inCart := make(map[int64]struct{}, len(lines))
	var serviceIDs []int64
	seen := map[int64]struct{}{}
	for _, l := range lines {
		inCart[l.MenuID] = struct{}{}
		if l.ServiceID == 0 {
			continue
		}
		if _, ok := seen[l.ServiceID]; ok {
			continue
		}
		seen[l.ServiceID] = struct{}{}
		serviceIDs = append(serviceIDs, l.ServiceID)
	}

	var (
		mu  sync.Mutex
		out = []Suggestion{}
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, serviceID := range serviceIDs {
		g.Go(func() error {
			groups, err := w.remote.MenusGrouped(gctx, serviceID)
			if err != nil {
				w.logg.Warn(w.logg.WithField(ctx, "service_id", serviceID), "load suggestion menus failed")
				return nil
			}
			var found []Suggestion
			for _, group := range groups {
				for _, menu := range group.Items {
					if _, ok := inCart[menu.ID]; ok {
						continue
					}
					found = append(found, Suggestion{
						ServiceID:   serviceID,
						MenuID:      menu.ID,
						Title:       menu.Title,
						Description: menu.Description,
						Price:       money.Paisa(menu.BasePriceInPaisa.Int64()),
						ImageURL:    w.imageURL(menu.ImagePath),
					})
				}
			}
			mu.Lock()
			out = append(out, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	w.shuffle(out)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func (w *Wizard) imageURL(path string) string {
	if w.images == nil {
		return path
	}
	return w.images(path)
}

func shuffleSuggestions(s []Suggestion) {
	rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
