// Copyright (c) 2025 the BiteSwipe authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import "github.com/jbake1990/biteswipe/models"

// Source supplies the restaurant candidates a session votes on. The
// static fixture is the only implementation today; an external search
// provider plugs in here later.
type Source interface {
	Restaurants() []models.Restaurant
}

// Fixture is the built-in candidate list.
type Fixture struct {
	restaurants []models.Restaurant
}

// NewFixture returns the sample candidate set.
func NewFixture() *Fixture {
	return &Fixture{restaurants: sampleRestaurants}
}

func (f *Fixture) Restaurants() []models.Restaurant {
	out := make([]models.Restaurant, len(f.restaurants))
	copy(out, f.restaurants)
	return out
}

// Lookup resolves the restaurant a vote key refers to. Vote keys are
// Yelp IDs, but older sessions voted under plain IDs, so both are tried
// in that order.
func (f *Fixture) Lookup(key string) (models.Restaurant, bool) {
	for _, r := range f.restaurants {
		if r.YelpID == key {
			return r, true
		}
	}
	for _, r := range f.restaurants {
		if r.ID == key {
			return r, true
		}
	}
	return models.Restaurant{}, false
}

var sampleRestaurants = []models.Restaurant{
	{
		ID:       "1",
		Name:     "Pizza Palace",
		Cuisine:  "Italian",
		Rating:   4.5,
		Price:    "$$",
		Distance: "0.3 mi",
		ImageURL: "https://images.unsplash.com/photo-1513104890138-7c749659a591?w=400",
		Address:  "123 Main St",
		YelpID:   "pizza-palace-1",
	},
	{
		ID:       "2",
		Name:     "Sushi Express",
		Cuisine:  "Japanese",
		Rating:   4.2,
		Price:    "$$$",
		Distance: "0.5 mi",
		ImageURL: "https://images.unsplash.com/photo-1579584425555-c3ce17fd4351?w=400",
		Address:  "456 Oak Ave",
		YelpID:   "sushi-express-2",
	},
	{
		ID:       "3",
		Name:     "Burger Joint",
		Cuisine:  "American",
		Rating:   4.0,
		Price:    "$",
		Distance: "0.2 mi",
		ImageURL: "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=400",
		Address:  "789 Pine St",
		YelpID:   "burger-joint-3",
	},
	{
		ID:       "4",
		Name:     "Taco Town",
		Cuisine:  "Mexican",
		Rating:   4.3,
		Price:    "$",
		Distance: "0.4 mi",
		ImageURL: "https://images.unsplash.com/photo-1565299624946-b28f40a0ca4b?w=400",
		Address:  "321 Elm St",
		YelpID:   "taco-town-4",
	},
	{
		ID:       "5",
		Name:     "Thai Delight",
		Cuisine:  "Thai",
		Rating:   4.6,
		Price:    "$$",
		Distance: "0.7 mi",
		ImageURL: "https://images.unsplash.com/photo-1551504734-5ee1c4a1479b?w=400",
		Address:  "654 Maple Dr",
		YelpID:   "thai-delight-5",
	},
}
