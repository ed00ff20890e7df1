package engine

import (
	"testing"
)

func TestMulberry32KnownValues(t *testing.T) {
	// Reference outputs of the JavaScript mulberry32 for the same seeds.
	tests := []struct {
		name string
		seed uint32
		want []uint32
	}{
		{
			name: "seed zero",
			seed: 0,
			want: []uint32{1144304738, 1416247, 958946056},
		},
		{
			name: "seed one",
			seed: 1,
			want: []uint32{2693262067, 11749833, 2265367787},
		},
		{
			name: "seed 42",
			seed: 42,
			want: []uint32{2581720956, 1925393290, 3661312704},
		},
		{
			name: "seed 12345",
			seed: 12345,
			want: []uint32{4207900869, 1317490944, 2079646450},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMulberry32(tt.seed)
			for i, want := range tt.want {
				if got := m.Next(); got != want {
					t.Errorf("draw %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestFloats(t *testing.T) {
	tests := []struct {
		name    string
		seed    uint32
		count   int
		wantLen int
	}{
		{name: "single float", seed: 7, count: 1, wantLen: 1},
		{name: "multiple floats", seed: 7, count: 64, wantLen: 64},
		{name: "zero count", seed: 7, count: 0, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			floats := Floats(tt.seed, tt.count)

			if len(floats) != tt.wantLen {
				t.Errorf("Floats() returned %d floats, want %d", len(floats), tt.wantLen)
			}

			for i, f := range floats {
				if f < 0 || f >= 1 {
					t.Errorf("Float %d is out of range [0, 1): %f", i, f)
				}
			}
		})
	}
}

func TestFloatsInto(t *testing.T) {
	dst := make([]float64, 10)
	result := FloatsInto(dst, 99, 5)
	if len(result) != 5 {
		t.Errorf("FloatsInto() returned %d floats, want 5", len(result))
	}

	smallDst := make([]float64, 2)
	result2 := FloatsInto(smallDst, 99, 5)
	if len(result2) != 5 {
		t.Errorf("FloatsInto() with small buffer returned %d floats, want 5", len(result2))
	}

	for i := range result {
		if result[i] != result2[i] {
			t.Errorf("Float %d differs between buffers: %f != %f", i, result[i], result2[i])
		}
	}
}

func TestDeterministicFloats(t *testing.T) {
	floats1 := Floats(424242, 16)
	floats2 := Floats(424242, 16)

	for i := range floats1 {
		if floats1[i] != floats2[i] {
			t.Errorf("Float %d differs: %f != %f", i, floats1[i], floats2[i])
		}
	}
}

func TestIntn(t *testing.T) {
	m := NewMulberry32(3)
	for i := 0; i < 1000; i++ {
		if v := m.Intn(5); v < 0 || v >= 5 {
			t.Fatalf("Intn(5) = %d, out of range", v)
		}
	}

	if v := m.Intn(0); v != 0 {
		t.Errorf("Intn(0) = %d, want 0", v)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	m := NewMulberry32(11)
	m.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[int]bool)
	for _, v := range items {
		if seen[v] {
			t.Fatalf("value %d appears twice after shuffle", v)
		}
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Errorf("shuffle lost elements: %v", items)
	}
}
