// Package collection has the few generic slice helpers the page services
// share.
//
//	names := collection.Map(products, func(p models.Product) string { return p.Name })
//	low := collection.Filter(products, func(p models.Product) bool { return p.Quantity < 20 })
//	pending := collection.Count(orders, func(po models.PurchaseOrder) bool { return po.Status == models.StatusPending })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn is true. The result is never
// nil, so it encodes as [] rather than null.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count returns how many elements of s satisfy fn.
func Count[T any](s []T, fn func(T) bool) int {
	n := 0
	for _, v := range s {
		if fn(v) {
			n++
		}
	}
	return n
}
