package units

import "fmt"

// Registry maps short codes to the units of one category. A registry is
// read-only once built.
type Registry struct {
	category  Category
	canonical string
	units     map[string]*ConversionUnit
	order     []string
}

// NewRegistry builds a registry. The None unit is always registered first;
// canonical must name one of the given units.
func NewRegistry(category Category, canonical string, us ...*ConversionUnit) (*Registry, error) {
	r := &Registry{
		category:  category,
		canonical: canonical,
		units:     make(map[string]*ConversionUnit, len(us)+1),
		order:     make([]string, 0, len(us)+1),
	}
	r.units[None] = noneUnit(category)
	r.order = append(r.order, None)

	for _, u := range us {
		if u == nil {
			continue
		}
		if _, ok := r.units[u.Short]; ok {
			return nil, fmt.Errorf("%w: %s unit %q", ErrDuplicateUnit, category, u.Short)
		}
		cu := *u
		cu.Category = category
		r.units[u.Short] = &cu
		r.order = append(r.order, u.Short)
	}
	if _, ok := r.units[canonical]; !ok || canonical == None {
		return nil, &UnitError{Code: canonical, Category: category, Valid: r.Codes()}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(category Category, canonical string, us ...*ConversionUnit) *Registry {
	r, err := NewRegistry(category, canonical, us...)
	if err != nil {
		panic(err)
	}
	return r
}

// Category returns the category every unit in r belongs to.
func (r *Registry) Category() Category {
	return r.category
}

// Canonical returns the short code of the canonical unit.
func (r *Registry) Canonical() string {
	return r.canonical
}

// Lookup returns the unit registered under code.
func (r *Registry) Lookup(code string) (*ConversionUnit, error) {
	u, ok := r.units[code]
	if !ok {
		return nil, &UnitError{Code: code, Category: r.category, Valid: r.Codes()}
	}
	return u, nil
}

// Has reports whether code is registered.
func (r *Registry) Has(code string) bool {
	_, ok := r.units[code]
	return ok
}

// Codes returns all short codes in registration order, None first.
func (r *Registry) Codes() []string {
	return append([]string(nil), r.order...)
}

// Full returns the display name for code, or code itself when unknown.
func (r *Registry) Full(code string) string {
	if u, ok := r.units[code]; ok {
		return u.Full
	}
	return code
}
