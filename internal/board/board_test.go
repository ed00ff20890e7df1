package board

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/MJE43/cognitive-gauntlet/internal/questions"
)

func coords(names ...string) []Coordinate {
	out := make([]Coordinate, len(names))
	for i, n := range names {
		out[i] = MustParse(n)
	}
	return out
}

func TestGenerateGolden(t *testing.T) {
	// Layouts produced by the JavaScript generator for the same seeds.
	tests := []struct {
		name      string
		board     *Board
		voids     []Coordinate
		optimal   int
		sample    map[string]string
		sampleDif map[string]int
	}{
		{
			name:      "single stage seed 42",
			board:     Generate(42),
			voids:     coords("B5", "C5", "D2", "E3", "E6", "G2", "G3", "H2"),
			optimal:   7,
			sample:    map[string]string{"A2": "math", "A3": "code", "A4": "medicine", "B1": "medicine"},
			sampleDif: map[string]int{"A2": 9, "A3": 9, "A4": 8, "B1": 9},
		},
		{
			name:      "scattered stage",
			board:     GenerateStage(1000, Scattered),
			voids:     coords("B1", "C4", "D3", "E6", "F8", "G1", "H1", "H5"),
			optimal:   7,
			sample:    map[string]string{"A2": "medicine", "A3": "code", "A4": "physics", "B1": "void"},
			sampleDif: map[string]int{"A2": 8, "A3": 8, "A4": 9, "B1": 0},
		},
		{
			name:      "corridor stage",
			board:     GenerateStage(1001, Corridor),
			voids:     coords("C4", "C5", "C6", "C7", "E2", "E3", "E5", "E6", "G3", "G4", "G5", "G6"),
			optimal:   8,
			sample:    map[string]string{"A2": "math", "A3": "code", "A4": "math", "B1": "physics"},
			sampleDif: map[string]int{"A2": 9, "A3": 9, "A4": 8, "B1": 9},
		},
		{
			name:      "maze stage",
			board:     GenerateStage(1002, Maze),
			voids:     coords("B6", "B7", "C5", "C7", "F5", "F6", "G6", "G7"),
			optimal:   8,
			sample:    map[string]string{"A2": "physics", "A3": "medicine", "A4": "medicine", "B1": "math"},
			sampleDif: map[string]int{"A2": 10, "A3": 8, "A4": 10, "B1": 9},
		},
		{
			name:      "fortress stage",
			board:     GenerateStage(1003, Fortress),
			voids:     coords("B6", "C8", "D2", "D7", "D8", "E8", "F7", "F8", "G6", "H6"),
			optimal:   7,
			sample:    map[string]string{"A2": "physics", "A3": "math", "A4": "math", "B1": "physics"},
			sampleDif: map[string]int{"A2": 10, "A3": 9, "A4": 9, "B1": 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.VoidList(); !reflect.DeepEqual(got, tt.voids) {
				t.Errorf("voids = %v, want %v", got, tt.voids)
			}
			if got := tt.board.OptimalDistance(); got != tt.optimal {
				t.Errorf("OptimalDistance() = %d, want %d", got, tt.optimal)
			}
			for cell, want := range tt.sample {
				sq := tt.board.Square(MustParse(cell))
				if got := sq.Category.String(); got != want {
					t.Errorf("%s category = %s, want %s", cell, got, want)
				}
				if got := sq.Difficulty; got != tt.sampleDif[cell] {
					t.Errorf("%s difficulty = %d, want %d", cell, got, tt.sampleDif[cell])
				}
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	for _, p := range Patterns {
		for seed := uint32(0); seed < 50; seed++ {
			a := GenerateStage(seed, p)
			b := GenerateStage(seed, p)
			if !reflect.DeepEqual(a.Squares(), b.Squares()) {
				t.Fatalf("%s seed %d: squares differ between generations", p, seed)
			}
			if !reflect.DeepEqual(a.VoidList(), b.VoidList()) {
				t.Fatalf("%s seed %d: voids differ between generations", p, seed)
			}
		}
	}
}

func TestEveryBoardIsSolvable(t *testing.T) {
	for _, p := range Patterns {
		for seed := uint32(0); seed < 500; seed++ {
			b := GenerateStage(seed, p)
			if d := ShortestPath(Start, Goal, b.Voids()); d == Unreachable {
				t.Fatalf("%s seed %d: goal unreachable", p, seed)
			}
		}
	}
	for seed := uint32(0); seed < 500; seed++ {
		if Generate(seed).OptimalDistance() == Unreachable {
			t.Fatalf("single seed %d: goal unreachable", seed)
		}
	}
}

func TestSquareInvariants(t *testing.T) {
	for _, p := range Patterns {
		b := GenerateStage(7, p)
		for _, sq := range b.Squares() {
			switch sq.Category.Kind() {
			case KindStart, KindGoal, KindVoid:
				if sq.Tier != 0 || sq.Difficulty != 0 {
					t.Errorf("%s %s: non-playable square carries tier/difficulty", p, sq.Coord)
				}
			case KindDomain:
				if sq.Tier != questions.MaxTier {
					t.Errorf("%s %s: tier = %d, want %d", p, sq.Coord, sq.Tier, questions.MaxTier)
				}
				if sq.Difficulty < 8 || sq.Difficulty > 10 {
					t.Errorf("%s %s: difficulty %d out of range", p, sq.Coord, sq.Difficulty)
				}
			}
		}
		if b.Square(Start).Category != StartCategory || b.Square(Goal).Category != GoalCategory {
			t.Errorf("%s: start/goal categories wrong", p)
		}
		if b.IsVoid(Start) || b.IsVoid(Goal) {
			t.Errorf("%s: start or goal is void", p)
		}
	}
}

func TestFortressWallsGoal(t *testing.T) {
	b := GenerateStage(99, Fortress)
	for _, c := range coords("F7", "F8", "G6", "H6") {
		if !b.IsVoid(c) {
			t.Errorf("inner wall %s is not void", c)
		}
	}
}

func TestShortestPath(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		voids []string
		want  int
	}{
		{name: "same cell", from: "C3", to: "C3", want: 0},
		{name: "open diagonal", from: "A1", to: "H8", want: 7},
		{name: "adjacent", from: "D4", to: "E5", want: 1},
		{name: "detour", from: "A1", to: "C1", voids: []string{"B1", "B2"}, want: 4},
		{name: "void destination still counted", from: "A1", to: "B2", voids: []string{"B2"}, want: 1},
		{name: "walled in", from: "A1", to: "H8", voids: []string{"A2", "B1", "B2"}, want: Unreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voids := make(VoidSet)
			for _, v := range tt.voids {
				voids[MustParse(v)] = struct{}{}
			}
			if got := ShortestPath(MustParse(tt.from), MustParse(tt.to), voids); got != tt.want {
				t.Errorf("ShortestPath() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestManhattan(t *testing.T) {
	if got := Manhattan(Start, Goal); got != 14 {
		t.Errorf("Manhattan(A1, H8) = %d, want 14", got)
	}
	if got := Manhattan(MustParse("D4"), MustParse("B7")); got != 5 {
		t.Errorf("Manhattan(D4, B7) = %d, want 5", got)
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    Coordinate
		wantErr bool
	}{
		{in: "A1", want: Coordinate{Col: 0, Row: 1}},
		{in: "h8", want: Coordinate{Col: 7, Row: 8}},
		{in: " c4 ", want: Coordinate{Col: 2, Row: 4}},
		{in: "I1", wantErr: true},
		{in: "A9", wantErr: true},
		{in: "A0", wantErr: true},
		{in: "A10", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseCoordinate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCoordinate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseCoordinate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAllAndNeighbors(t *testing.T) {
	all := All()
	if len(all) != 64 {
		t.Fatalf("All() returned %d cells, want 64", len(all))
	}
	if all[0] != Start || all[1] != MustParse("A2") || all[8] != MustParse("B1") {
		t.Errorf("All() is not column-major: %v %v %v", all[0], all[1], all[8])
	}
	if n := len(Neighbors(Start)); n != 3 {
		t.Errorf("corner has %d neighbors, want 3", n)
	}
	if n := len(Neighbors(MustParse("D4"))); n != 8 {
		t.Errorf("interior cell has %d neighbors, want 8", n)
	}
}

type countingPicker struct {
	session *questions.Session
	calls   int
}

func (p *countingPicker) Pick(d questions.Domain) questions.Question {
	p.calls++
	return p.session.Pick(d)
}

func TestQuestionForIsStable(t *testing.T) {
	b := GenerateStage(5, Maze)
	picker := &countingPicker{session: questions.NewSession(questions.Default(), 5)}

	var cell Coordinate
	for _, sq := range b.Squares() {
		if sq.Category.Kind() == KindDomain {
			cell = sq.Coord
			break
		}
	}

	first, ok := b.QuestionFor(cell, picker)
	if !ok {
		t.Fatalf("QuestionFor(%s) not ok", cell)
	}
	second, _ := b.QuestionFor(cell, picker)
	if first.ID != second.ID {
		t.Errorf("QuestionFor changed question: %s then %s", first.ID, second.ID)
	}
	if picker.calls != 1 {
		t.Errorf("picker called %d times, want 1", picker.calls)
	}
	d, _ := b.Square(cell).Category.Domain()
	if first.Domain != d {
		t.Errorf("question domain %s does not match square %s", first.Domain, d)
	}

	if _, ok := b.QuestionFor(Start, picker); ok {
		t.Error("start square returned a question")
	}
	if _, ok := b.QuestionFor(Goal, picker); ok {
		t.Error("goal square returned a question")
	}
	if b.AssignedQuestions() != 1 {
		t.Errorf("AssignedQuestions() = %d, want 1", b.AssignedQuestions())
	}
}

func TestRender(t *testing.T) {
	b := Generate(42)
	out := Render(b)
	lines := strings.Split(out, "\n")

	if lines[0] != renderHeader {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "8 |") || !strings.HasSuffix(lines[2], " G |") {
		t.Errorf("top row = %q, want row 8 ending in goal", lines[2])
	}
	if !strings.HasPrefix(lines[16], "1 | S |") {
		t.Errorf("bottom row = %q, want row 1 starting with start", lines[16])
	}

	marked := RenderWithPosition(b, Start)
	if !strings.Contains(marked, "1 |*S*|") {
		t.Errorf("position marker missing:\n%s", marked)
	}
}

func TestSquareJSON(t *testing.T) {
	sq := Square{Coord: MustParse("C4"), Category: DomainCategory(questions.Logic), Tier: 3, Difficulty: 9}
	data, err := json.Marshal(sq)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"coordinate":"C4","category":"logic","tier":3,"difficulty":9}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var back Square
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != sq {
		t.Errorf("round trip = %+v, want %+v", back, sq)
	}
}
