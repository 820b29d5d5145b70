package levels

import (
	"errors"
	"testing"
)

func TestNewTableThresholds(t *testing.T) {
	table, err := NewTable("skill_tailoring", []int64{100, 150, 250})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	if table.MaxLevel() != 3 {
		t.Errorf("MaxLevel = %d, want 3", table.MaxLevel())
	}

	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 100},
		{2, 250},
		{3, 500},
	}
	for _, tt := range tests {
		got, err := table.XPThreshold(tt.level)
		if err != nil {
			t.Errorf("XPThreshold(%d) error: %v", tt.level, err)
			continue
		}
		if got != tt.want {
			t.Errorf("XPThreshold(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}

	if _, err := table.XPThreshold(4); err == nil {
		t.Error("XPThreshold(4) should fail past max level")
	}
	if _, err := table.XPThreshold(-1); err == nil {
		t.Error("XPThreshold(-1) should fail")
	}
}

func TestNewTableRejectsNonMonotonic(t *testing.T) {
	tests := []struct {
		name       string
		increments []int64
	}{
		{"empty", nil},
		{"zero increment", []int64{100, 0, 50}},
		{"negative increment", []int64{100, -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable("skill_x", tt.increments); err == nil {
				t.Errorf("NewTable(%v) should fail", tt.increments)
			}
		})
	}
}

func TestLevelForXP(t *testing.T) {
	table, _ := NewTable("skill_tailoring", []int64{100, 150, 250})

	tests := []struct {
		xp   float64
		want int
	}{
		{-10, 0},
		{0, 0},
		{99.9, 0},
		{100, 1},
		{249, 1},
		{250, 2},
		{499, 2},
		{500, 3},
		{1e9, 3},
	}
	for _, tt := range tests {
		if got := table.LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%v) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestIncrementsRoundTrip(t *testing.T) {
	in := []int64{10, 20, 30, 40}
	table, _ := NewTable("skill_x", in)
	out := table.Increments()
	if len(out) != len(in) {
		t.Fatalf("Increments len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("Increments[%d] = %d, want %d", i, out[i], in[i])
		}
	}
	if table.XPToNext(3) != 40 || table.XPToNext(4) != 0 {
		t.Errorf("XPToNext wrong: %d, %d", table.XPToNext(3), table.XPToNext(4))
	}
}

func TestSetLookups(t *testing.T) {
	table, _ := NewTable("skill_tailoring", []int64{100, 150})
	set := Set{"skill_tailoring": table}

	level, err := set.LevelForXP("skill_tailoring", 120)
	if err != nil || level != 1 {
		t.Errorf("LevelForXP = %d, %v; want 1, nil", level, err)
	}
	xp, err := set.XPThreshold("skill_tailoring", 2)
	if err != nil || xp != 250 {
		t.Errorf("XPThreshold = %d, %v; want 250, nil", xp, err)
	}

	if _, err := set.LevelForXP("skill_unknown", 10); !errors.Is(err, ErrNoTable) {
		t.Errorf("unknown skill error = %v, want ErrNoTable", err)
	}
}

// FuzzLevelTableMonotonic checks LevelForXP never decreases as XP grows and that
// thresholds strictly increase level over level.
func FuzzLevelTableMonotonic(f *testing.F) {
	f.Add(uint16(10), uint16(20), uint16(30), uint32(15), uint32(40))
	f.Add(uint16(1), uint16(1), uint16(1), uint32(0), uint32(3))
	f.Add(uint16(500), uint16(1000), uint16(65535), uint32(1499), uint32(1500))

	f.Fuzz(func(t *testing.T, a, b, c uint16, x1, x2 uint32) {
		if a == 0 || b == 0 || c == 0 {
			return
		}
		table, err := NewTable("skill_fuzz", []int64{int64(a), int64(b), int64(c)})
		if err != nil {
			t.Fatalf("NewTable failed: %v", err)
		}

		for level := 0; level < table.MaxLevel(); level++ {
			lo, _ := table.XPThreshold(level)
			hi, _ := table.XPThreshold(level + 1)
			if hi <= lo {
				t.Errorf("threshold(%d)=%d not greater than threshold(%d)=%d", level+1, hi, level, lo)
			}
			if got := table.LevelForXP(float64(lo)); got != level {
				t.Errorf("LevelForXP(threshold(%d)) = %d", level, got)
			}
		}

		if x1 > x2 {
			x1, x2 = x2, x1
		}
		if table.LevelForXP(float64(x1)) > table.LevelForXP(float64(x2)) {
			t.Errorf("LevelForXP not monotonic: %d -> %d, %d -> %d",
				x1, table.LevelForXP(float64(x1)), x2, table.LevelForXP(float64(x2)))
		}
	})
}
