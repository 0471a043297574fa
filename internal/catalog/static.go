package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/citycare/storefront/pkg/citycare"
)

//go:embed catalog.json
var catalogJSON []byte

// Static is the bundled guest catalog served without the remote API.
type Static struct {
	parents  []citycare.Service
	children map[string][]citycare.Service
	menus    map[string][]citycare.MenuGroup
}

type staticDocument struct {
	Parents  []citycare.Service              `json:"parents"`
	Children map[string][]citycare.Service   `json:"children"`
	Menus    map[string][]citycare.MenuGroup `json:"menus"`
}

// LoadStatic parses the embedded catalog.
func LoadStatic() (*Static, error) {
	return ParseStatic(catalogJSON)
}

func ParseStatic(raw []byte) (*Static, error) {
	var doc staticDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse static catalog: %w", err)
	}
	s := &Static{
		parents:  doc.Parents,
		children: doc.Children,
		menus:    doc.Menus,
	}
	if s.parents == nil {
		s.parents = []citycare.Service{}
	}
	return s, nil
}

func (s *Static) Parents() []citycare.Service {
	return s.parents
}

// ByParent is keyed by the raw path segment; unknown parents list nothing.
func (s *Static) ByParent(parentID string) []citycare.Service {
	if children, ok := s.children[parentID]; ok {
		return children
	}
	return []citycare.Service{}
}

// Service looks the id up among child services first and parents second.
func (s *Static) Service(rawID string) (citycare.Service, bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return citycare.Service{}, false
	}
	for _, children := range s.children {
		for _, child := range children {
			if child.ID == id {
				return child, true
			}
		}
	}
	for _, parent := range s.parents {
		if parent.ID == id {
			return parent, true
		}
	}
	return citycare.Service{}, false
}

func (s *Static) Menus(serviceID string) []citycare.MenuGroup {
	if groups, ok := s.menus[serviceID]; ok {
		return groups
	}
	return []citycare.MenuGroup{}
}
