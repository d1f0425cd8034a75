package models

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

// Confusion returns an nClasses x nClasses matrix, rows = truth.
func Confusion(y, p []int, nClasses int) [][]int {
	m := make([][]int, nClasses)
	for i := range m {
		m[i] = make([]int, nClasses)
	}
	for i := range y {
		m[y[i]][p[i]]++
	}
	return m
}

// MacroPRF1 averages per-class precision, recall and F1 over classes that
// appear in y or p.
func MacroPRF1(y, p []int, nClasses int) (precision, recall, f1 float64) {
	m := Confusion(y, p, nClasses)
	seen := 0
	for c := 0; c < nClasses; c++ {
		tp := m[c][c]
		fp, fn := 0, 0
		for k := 0; k < nClasses; k++ {
			if k == c {
				continue
			}
			fp += m[k][c]
			fn += m[c][k]
		}
		if tp+fp+fn == 0 {
			continue
		}
		seen++
		var pr, rc, f float64
		if tp+fp > 0 {
			pr = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rc = float64(tp) / float64(tp+fn)
		}
		if pr+rc > 0 {
			f = 2 * pr * rc / (pr + rc)
		}
		precision += pr
		recall += rc
		f1 += f
	}
	if seen == 0 {
		return 0, 0, 0
	}
	n := float64(seen)
	return precision / n, recall / n, f1 / n
}
