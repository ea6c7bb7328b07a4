package world

import "sort"

// Stockpile is a building-local store with one shared capacity across
// all resource kinds. Adds are clamped; callers decide what to do with
// the remainder.
type Stockpile struct {
	Capacity int            `json:"capacity"`
	Items    map[string]int `json:"items"`
}

func NewStockpile(capacity int) *Stockpile {
	return &Stockpile{Capacity: capacity, Items: map[string]int{}}
}

func (s *Stockpile) Total() int {
	n := 0
	for _, v := range s.Items {
		n += v
	}
	return n
}

func (s *Stockpile) Space() int {
	sp := s.Capacity - s.Total()
	if sp < 0 {
		sp = 0
	}
	return sp
}

func (s *Stockpile) Count(res string) int { return s.Items[res] }

// Add stores up to amount of res and returns how much actually fit.
func (s *Stockpile) Add(res string, amount int) int {
	if amount <= 0 {
		return 0
	}
	fit := amount
	if sp := s.Space(); fit > sp {
		fit = sp
	}
	if fit > 0 {
		s.Items[res] += fit
	}
	return fit
}

// Remove takes up to amount of res and returns how much was taken.
func (s *Stockpile) Remove(res string, amount int) int {
	if amount <= 0 {
		return 0
	}
	have := s.Items[res]
	if amount > have {
		amount = have
	}
	if amount == have {
		delete(s.Items, res)
	} else {
		s.Items[res] = have - amount
	}
	return amount
}

// resourceKinds lists held resource kinds in lexicographic order, the
// iteration order used whenever a system scans a stockpile.
func (s *Stockpile) resourceKinds() []string {
	kinds := make([]string, 0, len(s.Items))
	for k := range s.Items {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
