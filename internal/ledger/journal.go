package ledger

// Set assigns v to *p and journals the previous value.
func Set[T any](tx *Tx, p *T, v T) {
	old := *p
	tx.OnRollback(func() { *p = old })
	*p = v
}

// Put stores m[k] = v and journals the previous entry or its absence.
func Put[K comparable, V any](tx *Tx, m map[K]V, k K, v V) {
	old, existed := m[k]
	tx.OnRollback(func() {
		if existed {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

// Delete removes m[k] and journals the previous entry.
func Delete[K comparable, V any](tx *Tx, m map[K]V, k K) {
	old, existed := m[k]
	if !existed {
		return
	}
	tx.OnRollback(func() { m[k] = old })
	delete(m, k)
}

// Append appends v to *s and journals the previous length.
func Append[T any](tx *Tx, s *[]T, v T) {
	n := len(*s)
	tx.OnRollback(func() { *s = (*s)[:n] })
	*s = append(*s, v)
}
