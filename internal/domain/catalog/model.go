package catalog

// ProductDetails is the schema.org Product data found on a retailer page.
type ProductDetails struct {
	Name         string   `json:"name,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"reviewCount,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Description  string   `json:"description,omitempty"`
	Image        string   `json:"image,omitempty"`
}

// DetailsResponse reports whether a page still exists and what it describes.
type DetailsResponse struct {
	Exists  bool            `json:"exists"`
	Details *ProductDetails `json:"details"`
	Error   string          `json:"error,omitempty"`
}
