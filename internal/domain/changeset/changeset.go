// Package changeset computes the positional difference between two ordered
// lists, expressed as the row deletions, reloads and insertions a list view
// needs to animate from the old list to the new one.
package changeset

// Position addresses a row in a list. Section is always 0; it exists so
// positions map directly onto sectioned list APIs.
type Position struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// At returns the position of row in section 0.
func At(row int) Position { return Position{Row: row} }

// Changeset describes how to turn an old list into a new one.
//
// Consumers must apply Deletions first, then Modifications, then Insertions.
// Deletions and Modifications index the old list; Insertions index the new one.
type Changeset struct {
	Deletions     []Position `json:"deletions"`
	Modifications []Position `json:"modifications"`
	Insertions    []Position `json:"insertions"`
}

// IsEmpty reports whether the two lists were identical in identity and content.
func (c Changeset) IsEmpty() bool {
	return len(c.Deletions) == 0 && len(c.Modifications) == 0 && len(c.Insertions) == 0
}

// Len returns the total number of row operations.
func (c Changeset) Len() int {
	return len(c.Deletions) + len(c.Modifications) + len(c.Insertions)
}

// Rows flattens positions to plain row indices.
func Rows(positions []Position) []int {
	rows := make([]int, len(positions))
	for i, p := range positions {
		rows[i] = p.Row
	}
	return rows
}

// Compute diffs oldItems against newItems. key extracts the identity used to
// match items across the lists and contentEqual decides whether a matched
// item needs a reload.
//
// Keys are expected to be unique within each list. When they are not, the
// first occurrence of a key is the one matched against.
func Compute[T any, K comparable](oldItems, newItems []T, key func(T) K, contentEqual func(T, T) bool) Changeset {
	oldIndex := indexByKey(oldItems, key)
	newIndex := indexByKey(newItems, key)

	cs := Changeset{
		Deletions:     []Position{},
		Modifications: []Position{},
		Insertions:    []Position{},
	}

	for _, item := range oldItems {
		k := key(item)
		j, ok := newIndex[k]
		if !ok {
			cs.Deletions = append(cs.Deletions, At(oldIndex[k]))
			continue
		}
		if !contentEqual(item, newItems[j]) {
			cs.Modifications = append(cs.Modifications, At(oldIndex[k]))
		}
	}

	for _, item := range newItems {
		k := key(item)
		if _, ok := oldIndex[k]; !ok {
			cs.Insertions = append(cs.Insertions, At(newIndex[k]))
		}
	}

	return cs
}

// indexByKey maps every key to the row of its first occurrence.
func indexByKey[T any, K comparable](items []T, key func(T) K) map[K]int {
	index := make(map[K]int, len(items))
	for row, item := range items {
		k := key(item)
		if _, seen := index[k]; !seen {
			index[k] = row
		}
	}
	return index
}
