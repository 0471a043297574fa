// Package catalog serves the service catalog, either from the remote API or
// from the bundled guest copy.
package catalog

import (
	"context"
	"fmt"

	"github.com/citycare/storefront/pkg/citycare"
	"github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/money"
)

type Remote interface {
	ParentServices(ctx context.Context) ([]citycare.Service, error)
	ServicesByParent(ctx context.Context, parentID int64) ([]citycare.Service, error)
	MenusGrouped(ctx context.Context, serviceID int64) ([]citycare.MenuGroup, error)
	ServiceByID(ctx context.Context, id int64) (*citycare.Service, error)
}

type ImageResolver interface {
	URL(path string) string
}

// ServiceCard is a service ready for display.
type ServiceCard struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image"`
	ParentID    *int64 `json:"parentId,omitempty"`
}

// MenuCard is a menu ready for display and for adding to the cart.
type MenuCard struct {
	ID          int64       `json:"id"`
	ServiceID   int64       `json:"serviceId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       money.Paisa `json:"price"`
	ImageURL    string      `json:"image"`
}

type MenuSection struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image"`
	Items       []MenuCard `json:"items"`
}

// Browser reads the remote catalog and resolves image paths.
type Browser struct {
	remote Remote
	images ImageResolver
}

func NewBrowser(remote Remote, images ImageResolver) (*Browser, error) {
	if remote == nil {
		return nil, fmt.Errorf("catalog remote required")
	}
	if images == nil {
		return nil, fmt.Errorf("image resolver required")
	}
	return &Browser{remote: remote, images: images}, nil
}

func (b *Browser) Parents(ctx context.Context) ([]ServiceCard, error) {
	services, err := b.remote.ParentServices(ctx)
	if err != nil {
		return nil, err
	}
	return b.cards(services), nil
}

func (b *Browser) Children(ctx context.Context, parentID int64) ([]ServiceCard, error) {
	if parentID <= 0 {
		return nil, errors.New(errors.CodeValidation, "invalid service id")
	}
	services, err := b.remote.ServicesByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return b.cards(services), nil
}

func (b *Browser) Service(ctx context.Context, id int64) (ServiceCard, error) {
	if id <= 0 {
		return ServiceCard{}, errors.New(errors.CodeValidation, "invalid service id")
	}
	svc, err := b.remote.ServiceByID(ctx, id)
	if err != nil {
		return ServiceCard{}, err
	}
	return b.card(*svc), nil
}

// Menus lists a service's menus by subcategory. Menus carry the requested
// service id when the API leaves it out.
func (b *Browser) Menus(ctx context.Context, serviceID int64) ([]MenuSection, error) {
	if serviceID <= 0 {
		return nil, errors.New(errors.CodeValidation, "invalid service id")
	}
	groups, err := b.remote.MenusGrouped(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	out := make([]MenuSection, 0, len(groups))
	for _, g := range groups {
		section := MenuSection{
			ID:          g.SubcategoryID,
			Title:       g.SubcategoryTitle,
			Description: g.SubcategoryDescription,
			ImageURL:    b.images.URL(g.SubcategoryImagePath),
			Items:       make([]MenuCard, 0, len(g.Items)),
		}
		for _, m := range g.Items {
			sid := m.ServiceID
			if sid == 0 {
				sid = serviceID
			}
			section.Items = append(section.Items, MenuCard{
				ID:          m.ID,
				ServiceID:   sid,
				Title:       m.Title,
				Description: m.Description,
				Price:       money.Paisa(m.BasePriceInPaisa.Int64()),
				ImageURL:    b.images.URL(m.ImagePath),
			})
		}
		out = append(out, section)
	}
	return out, nil
}

func (b *Browser) cards(services []citycare.Service) []ServiceCard {
	out := make([]ServiceCard, 0, len(services))
	for _, s := range services {
		out = append(out, b.card(s))
	}
	return out
}

func (b *Browser) card(s citycare.Service) ServiceCard {
	return ServiceCard{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		ImageURL:    b.images.URL(s.ImagePath),
		ParentID:    s.ParentID,
	}
}
