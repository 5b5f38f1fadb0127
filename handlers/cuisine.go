package handlers

import "strings"

type cuisineKeyword struct {
	keyword string
	cuisine string
}

// cuisineKeywords maps classifier label fragments to cuisines. Order matters:
// the first keyword contained in the label wins.
var cuisineKeywords = []cuisineKeyword{
	{"pizza", "Pizza"},
	{"sushi", "Japanese"},
	{"ice cream", "Desserts"},
	{"burger", "American"},
	{"pasta", "Italian"},
	{"taco", "Mexican"},
	{"noodle", "Chinese"},
	{"rice", "Asian"},
	{"salad", "Healthy"},
	{"sandwich", "Fast Food"},
	{"cake", "Desserts"},
	{"bread", "Bakery"},
	{"coffee", "Cafe"},
	{"tea", "Cafe"},
	{"chocolate", "Desserts"},
	{"cookie", "Desserts"},
	{"donut", "Desserts"},
	{"french fries", "Fast Food"},
	{"hot dog", "Fast Food"},
	{"meat", "BBQ"},
	{"chicken", "BBQ"},
	{"fish", "Seafood"},
	{"shrimp", "Seafood"},
	{"crab", "Seafood"},
	{"lobster", "Seafood"},
	{"vegetable", "Vegetarian"},
}

// fruits all map to Healthy and are checked after the dishes above.
var fruits = []string{
	"fruit", "apple", "orange", "banana", "strawberry", "grape", "watermelon",
	"pineapple", "mango", "peach", "pear", "cherry", "lemon", "lime", "coconut",
	"kiwi", "melon", "blueberry", "raspberry", "blackberry", "cranberry",
	"pomegranate", "fig", "date", "prune", "raisin", "currant", "apricot", "plum",
	"nectarine", "persimmon", "guava", "papaya", "passion fruit", "dragon fruit",
	"star fruit", "jackfruit", "durian", "lychee", "rambutan", "mangosteen",
	"longan", "loquat", "kumquat", "tangerine", "clementine", "mandarin",
	"grapefruit", "pomelo",
}

func init() {
	for _, f := range fruits {
		cuisineKeywords = append(cuisineKeywords, cuisineKeyword{f, "Healthy"})
	}
}

// MatchCuisine returns the cuisine for a classifier label.
func MatchCuisine(label string) (string, bool) {
	lower := strings.ToLower(label)
	for _, k := range cuisineKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.cuisine, true
		}
	}
	return "", false
}
