package world

import (
	"testing"

	"sandvox.gg/internal/sim/blocks"
)

func TestWaterFillsEnclosedShaft(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 1, FluidEveryTicks: 1, FluidBudget: 64})

	// Dig a 1x1 shaft into flat terrain and pour water in at the top.
	for y := 20; y <= 26; y++ {
		w.SetBlockAt(5, y, 5, blocks.Air, "p1")
	}
	w.SetBlockAt(5, 26, 5, blocks.Water, "p1")

	for i := 0; i < 40; i++ {
		w.StepOnce()
	}

	for y := 20; y <= 26; y++ {
		if got := w.BlockAt(5, y, 5); got != blocks.Water {
			t.Fatalf("shaft cell y=%d = %s, want water", y, blocks.Name(got))
		}
	}
	if got := w.BlockAt(5, 19, 5); !blocks.Solid(got) {
		t.Fatalf("shaft floor = %s, want solid", blocks.Name(got))
	}
	// Walls held: no water escaped sideways at the surface.
	if got := w.BlockAt(4, 26, 5); got == blocks.Water {
		t.Fatal("water escaped the shaft laterally")
	}
	if len(w.fluidQueue) != 0 {
		t.Fatalf("fluid queue not quiescent: %d entries", len(w.fluidQueue))
	}
}

func TestWaterSpreadsOnlyWithFooting(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 1, FluidEveryTicks: 1, FluidBudget: 64})

	// Two-block stone ledge floating in air; water on one end.
	w.SetBlockAt(20, 30, 20, blocks.Stone, "p1")
	w.SetBlockAt(21, 30, 20, blocks.Stone, "p1")
	w.SetBlockAt(20, 31, 20, blocks.Water, "p1")

	for i := 0; i < 30; i++ {
		w.StepOnce()
	}

	if got := w.BlockAt(21, 31, 20); got != blocks.Water {
		t.Fatalf("supported neighbor = %s, want water", blocks.Name(got))
	}
	// No footing past the ledge: the pool stops instead of sheeting over.
	if got := w.BlockAt(19, 31, 20); got != blocks.Air {
		t.Fatalf("ledge edge = %s, want air", blocks.Name(got))
	}
	if got := w.BlockAt(22, 31, 20); got != blocks.Air {
		t.Fatalf("past the ledge = %s, want air", blocks.Name(got))
	}
}

func TestWaterFallsBeforeSpreading(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 1, FluidEveryTicks: 1, FluidBudget: 64})

	// Water placed high above the terrain: the column falls straight down
	// without widening on the way; spread only starts once it lands.
	w.SetBlockAt(30, 35, 30, blocks.Water, "p1")

	for i := 0; i < 60; i++ {
		w.StepOnce()
	}

	for y := 27; y <= 35; y++ {
		if got := w.BlockAt(30, y, 30); got != blocks.Water {
			t.Fatalf("column y=%d = %s, want water", y, blocks.Name(got))
		}
	}
	if got := w.BlockAt(31, 34, 30); got == blocks.Water {
		t.Fatal("falling column widened mid-air")
	}
}

func TestFluidBudgetStillConverges(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Seed: 1, FluidEveryTicks: 1, FluidBudget: 1})

	for y := 23; y <= 26; y++ {
		w.SetBlockAt(7, y, 7, blocks.Air, "p1")
	}
	w.SetBlockAt(7, 26, 7, blocks.Water, "p1")

	// Budget 1 drains one cell per fluid tick; the shaft still fills, just
	// over more ticks.
	for i := 0; i < 200; i++ {
		w.StepOnce()
	}
	for y := 23; y <= 26; y++ {
		if got := w.BlockAt(7, y, 7); got != blocks.Water {
			t.Fatalf("shaft cell y=%d = %s, want water", y, blocks.Name(got))
		}
	}
}
