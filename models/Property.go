package models

import "time"

type Property struct {
	ID          uint      `json:"ID"`
	OwnerID     uint      `json:"ownerID"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Locality    string    `json:"locality"`
	Price       int64     `json:"price"`       // monthly rent or sale price, INR
	ListingType string    `json:"listingType"` // rent | sale
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	AreaSqFt    int       `json:"areaSqFt"`
	Furnishing  string    `json:"furnishing"`
	Images      []string  `json:"images"`
	Amenities   []string  `json:"amenities"`
	Owner       *User     `json:"owner,omitempty"`
	Interested  bool      `json:"interested"` // viewer has expressed interest
	Saved       bool      `json:"saved"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PropertyCard is the summary shape used by listing grids and chat previews.
type PropertyCard struct {
	ID       uint   `json:"ID"`
	Title    string `json:"title"`
	City     string `json:"city"`
	Locality string `json:"locality"`
	Price    int64  `json:"price"`
	Image    string `json:"image"`
}

func (p *Property) Card() PropertyCard {
	card := PropertyCard{
		ID:       p.ID,
		Title:    p.Title,
		City:     p.City,
		Locality: p.Locality,
		Price:    p.Price,
	}
	if len(p.Images) > 0 {
		card.Image = p.Images[0]
	}
	return card
}
