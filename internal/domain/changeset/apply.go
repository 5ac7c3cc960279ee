package changeset

import "sort"

// Apply replays cs against oldItems the way a list view would: rows are
// deleted, matched rows are reloaded with their counterpart from newItems,
// and new rows are inserted at their target positions in ascending order.
// Changesets carry no moves, so surviving rows are placed in newItems order
// before the insertions. With unique keys the result matches newItems.
func Apply[T any, K comparable](oldItems, newItems []T, cs Changeset, key func(T) K) []T {
	deleted := make(map[int]struct{}, len(cs.Deletions))
	for _, p := range cs.Deletions {
		deleted[p.Row] = struct{}{}
	}
	modified := make(map[int]struct{}, len(cs.Modifications))
	for _, p := range cs.Modifications {
		modified[p.Row] = struct{}{}
	}

	newIndex := indexByKey(newItems, key)

	survivors := make([]T, 0, len(oldItems))
	for row, item := range oldItems {
		if _, ok := deleted[row]; ok {
			continue
		}
		if _, ok := modified[row]; ok {
			item = newItems[newIndex[key(item)]]
		}
		survivors = append(survivors, item)
	}
	sort.SliceStable(survivors, func(i, j int) bool {
		return newIndex[key(survivors[i])] < newIndex[key(survivors[j])]
	})

	inserts := make([]Position, len(cs.Insertions))
	copy(inserts, cs.Insertions)
	sort.Slice(inserts, func(i, j int) bool { return inserts[i].Row < inserts[j].Row })

	result := survivors
	for _, p := range inserts {
		result = append(result, newItems[p.Row])
		copy(result[p.Row+1:], result[p.Row:len(result)-1])
		result[p.Row] = newItems[p.Row]
	}
	return result
}
