package citycare

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	pkgerrors "github.com/citycare/storefront/pkg/errors"
	"github.com/citycare/storefront/pkg/types"
)

// Service is a catalog category. Parent services have a nil ParentID.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImagePath   string `json:"imagePath"`
	ParentID    *int64 `json:"parentId"`
}

// ServiceMenu is one purchasable offering.
type ServiceMenu struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	BasePriceInPaisa types.FlexInt `json:"basePriceInPaisa"`
	ImagePath        string        `json:"imagePath"`
	ServiceID        int64         `json:"serviceId"`
}

// MenuGroup is a subcategory with its menus.
type MenuGroup struct {
	SubcategoryID          int64         `json:"subcategoryId"`
	SubcategoryTitle       string        `json:"subcategoryTitle"`
	SubcategoryDescription string        `json:"subcategoryDescription"`
	SubcategoryImagePath   string        `json:"subcategoryImagePath"`
	Items                  []ServiceMenu `json:"items"`
}

// ParentServices lists top-level categories. A rejected envelope reads as empty.
func (c *Client) ParentServices(ctx context.Context) ([]Service, error) {
	var out []Service
	err := c.do(ctx, request{
		endpoint: "services.parents",
		method:   http.MethodGet,
		path:     "services/parents",
	}, expectData("parent services", &out))
	return emptyOnReject(out, err)
}

// ServicesByParent lists the child services of a category.
func (c *Client) ServicesByParent(ctx context.Context, parentID int64) ([]Service, error) {
	var out []Service
	err := c.do(ctx, request{
		endpoint: "services.by_parent",
		method:   http.MethodGet,
		path:     "services/by-parent/" + idPath(parentID),
	}, expectData("child services", &out))
	return emptyOnReject(out, err)
}

// MenusGrouped lists a service's menus grouped by subcategory.
func (c *Client) MenusGrouped(ctx context.Context, serviceID int64) ([]MenuGroup, error) {
	var out []MenuGroup
	err := c.do(ctx, request{
		endpoint: "service_menus.grouped",
		method:   http.MethodGet,
		path:     "service-menus/grouped-by-subcategory",
		query:    url.Values{"serviceId": {strconv.FormatInt(serviceID, 10)}},
	}, expectData("grouped menus", &out))
	return emptyOnReject(out, err)
}

// ServiceByID fetches one service.
func (c *Client) ServiceByID(ctx context.Context, id int64) (*Service, error) {
	var out Service
	err := c.do(ctx, request{
		endpoint: "services.get",
		method:   http.MethodGet,
		path:     "services/" + idPath(id),
	}, expectData("service", &out))
	if pkgerrors.IsCode(err, pkgerrors.CodeRemoteRejected) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Service not found")
	}
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Service not found")
	}
	return &out, nil
}

func emptyOnReject[T any](items []T, err error) ([]T, error) {
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeRemoteRejected) || pkgerrors.IsCode(err, pkgerrors.CodeMalformedResponse) {
			return []T{}, nil
		}
		return nil, err
	}
	return nonNil(items), nil
}
