package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// DefaultProperties returns the portfolio shipped with the dashboard
func DefaultProperties() []domain.Property {
	return []domain.Property{
		{Label: "La Terrazza di Jenny", Folder: "La_Terrazza", Rooms: 5},
		{Label: "Lavagnini My Place", Folder: "Lavagnini", Rooms: 5},
		{Label: "B&B Pitti Palace", Folder: "Pitti_Palace", Rooms: 10},
	}
}

// UpperSnake turns a display label into its upper-snake form,
// e.g. "B&B Pitti Palace" becomes "B_B_PITTI_PALACE"
func UpperSnake(label string) string {
	s := nonAlnumRun.ReplaceAllString(strings.TrimSpace(label), "_")
	return strings.ToUpper(strings.Trim(s, "_"))
}

// PropertyRegistry resolves any of a property's names to its definition
type PropertyRegistry struct {
	props []domain.Property
	index map[string]int
}

// NewPropertyRegistry validates props and builds the lookup index.
// An empty list falls back to DefaultProperties.
func NewPropertyRegistry(props []domain.Property) (*PropertyRegistry, error) {
	if len(props) == 0 {
		props = DefaultProperties()
	}

	r := &PropertyRegistry{
		props: make([]domain.Property, 0, len(props)),
		index: make(map[string]int, len(props)*3),
	}
	folders := make(map[string]bool, len(props))

	for _, p := range props {
		if strings.TrimSpace(p.Label) == "" {
			return nil, fmt.Errorf("property label must not be empty")
		}
		if strings.TrimSpace(p.Folder) == "" {
			return nil, fmt.Errorf("property %q has no folder", p.Label)
		}
		if strings.ContainsAny(p.Folder, `/\`) || p.Folder == "." || p.Folder == ".." {
			return nil, fmt.Errorf("property %q has invalid folder %q", p.Label, p.Folder)
		}
		if folders[p.Folder] {
			return nil, fmt.Errorf("duplicate property folder %q", p.Folder)
		}
		folders[p.Folder] = true
		if p.Rooms <= 0 {
			p.Rooms = DefaultRoomsHint
		}

		i := len(r.props)
		r.props = append(r.props, p)
		for _, key := range []string{p.Label, p.Folder, UpperSnake(p.Label)} {
			k := strings.ToLower(key)
			if _, taken := r.index[k]; !taken {
				r.index[k] = i
			}
		}
	}
	return r, nil
}

// All returns the properties in configuration order
func (r *PropertyRegistry) All() []domain.Property {
	out := make([]domain.Property, len(r.props))
	copy(out, r.props)
	return out
}

// Lookup matches name case-insensitively against label, folder and upper-snake label
func (r *PropertyRegistry) Lookup(name string) (domain.Property, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return domain.Property{}, false
	}
	if i, ok := r.index[key]; ok {
		return r.props[i], true
	}
	if i, ok := r.index[strings.ToLower(UpperSnake(name))]; ok {
		return r.props[i], true
	}
	return domain.Property{}, false
}

// Folders lists the storage folder of every property
func (r *PropertyRegistry) Folders() []string {
	out := make([]string, len(r.props))
	for i, p := range r.props {
		out[i] = p.Folder
	}
	return out
}
