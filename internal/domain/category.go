package domain

// Subcategory is a nested refinement of a category.
type Subcategory struct {
	ID   string `json:"_id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Category groups products for browsing surfaces.
type Category struct {
	ID            string        `json:"_id"`
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon,omitempty"`
	Color         string        `json:"color,omitempty"`
	Description   string        `json:"description,omitempty"`
	ProductCount  int           `json:"productCount"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}
