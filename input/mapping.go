package input

// qwertyRow is the home-row piano layout: white keys on a s d f g h j k l ; '
// and black keys on the row above.
const qwertyRow = "awsedftgyhujkolp;'"

// QwertyMapping maps the home-row piano layout onto consecutive key ids
// starting at base. Key codes are rune values.
func QwertyMapping(base float64) map[int]float64 {
	m := make(map[int]float64, len(qwertyRow))
	for i, r := range qwertyRow {
		m[int(r)] = base + float64(i)
	}
	return m
}
