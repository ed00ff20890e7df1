package engine

// Mulberry32 is a small counter-based PRNG that can be implemented identically
// in Go and JavaScript. Boards generated in either language from the same seed
// come out identical, which is what makes cross-model runs comparable.
// Algorithm: https://gist.github.com/tommyettinger/46a874533244883189143505d203312c
type Mulberry32 struct {
	state uint32
}

// NewMulberry32 creates a new Mulberry32 PRNG with the given seed
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Next returns the next random uint32
func (m *Mulberry32) Next() uint32 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float64 returns a random float64 in [0, 1)
func (m *Mulberry32) Float64() float64 {
	return float64(m.Next()) / 4294967296.0
}

// Intn returns floor(Float64() * n). It consumes exactly one draw, so callers
// that mirror the JavaScript `Math.floor(rng() * n)` idiom stay in lockstep.
func (m *Mulberry32) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(m.Float64() * float64(n))
}

// Shuffle permutes n elements in place with a backwards Fisher-Yates pass.
func (m *Mulberry32) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := m.Intn(i + 1)
		swap(i, j)
	}
}

// Floats generates the specified number of floats from a fresh stream
func Floats(seed uint32, count int) []float64 {
	return FloatsInto(make([]float64, 0, count), seed, count)
}

// FloatsInto writes count floats into dst, reusing its capacity when possible
func FloatsInto(dst []float64, seed uint32, count int) []float64 {
	dst = dst[:0]
	m := NewMulberry32(seed)
	for i := 0; i < count; i++ {
		dst = append(dst, m.Float64())
	}
	return dst
}
