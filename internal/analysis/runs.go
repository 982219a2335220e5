package analysis

// Run 一段连续且同键的元素区间，索引为半开区间 [Start, End)
type Run[K comparable] struct {
	Key   K
	Start int
	End   int
}

// Runs 把切片按 key 切分为最大连续段，顺序与输入一致
func Runs[T any, K comparable](items []T, key func(T) K) []Run[K] {
	if len(items) == 0 {
		return nil
	}

	var runs []Run[K]
	cur := Run[K]{Key: key(items[0]), Start: 0}
	for i := 1; i < len(items); i++ {
		k := key(items[i])
		if k != cur.Key {
			cur.End = i
			runs = append(runs, cur)
			cur = Run[K]{Key: k, Start: i}
		}
	}
	cur.End = len(items)
	return append(runs, cur)
}
