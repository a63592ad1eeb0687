package cart

import (
	"testing"
	"time"
)

func TestAddThenDecrementRoundTrip(t *testing.T) {
	start := Items{"a": 2}
	added, err := AddItem(start, "p1")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if added["p1"] != 1 {
		t.Fatalf("qty = %d, want 1", added["p1"])
	}
	back := DecrementItem(added, "p1")
	if !back.Equal(start) {
		t.Fatalf("round trip = %v, want %v", back, start)
	}
}

func TestAddIncrementsExisting(t *testing.T) {
	got, err := AddItem(Items{"p1": 3}, "p1")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got["p1"] != 4 {
		t.Fatalf("qty = %d, want 4", got["p1"])
	}
}

func TestAddRejectsEmptyProductID(t *testing.T) {
	if _, err := AddItem(Items{}, "  "); err != ErrInvalidProductID {
		t.Fatalf("err = %v, want %v", err, ErrInvalidProductID)
	}
}

func TestDecrementAbsentIsNoop(t *testing.T) {
	c := Items{"a": 1, "b": 5}
	got := DecrementItem(c, "missing")
	if !got.Equal(c) {
		t.Fatalf("got %v, want %v", got, c)
	}
}

func TestDecrementNeverLeavesZero(t *testing.T) {
	got := DecrementItem(Items{"a": 1}, "a")
	if _, ok := got["a"]; ok {
		t.Fatalf("entry still present: %v", got)
	}
	got = DecrementItem(Items{"a": 3}, "a")
	if got["a"] != 2 {
		t.Fatalf("qty = %d, want 2", got["a"])
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	c := Items{"a": 7, "b": 1}
	once := RemoveItem(c, "a")
	twice := RemoveItem(once, "a")
	if !once.Equal(twice) {
		t.Fatalf("once = %v, twice = %v", once, twice)
	}
	if _, ok := once["a"]; ok {
		t.Fatalf("a still present: %v", once)
	}
}

func TestMutatorsDoNotTouchInput(t *testing.T) {
	c := Items{"a": 1}
	_, _ = AddItem(c, "a")
	_ = DecrementItem(c, "a")
	_ = RemoveItem(c, "a")
	if c["a"] != 1 || len(c) != 1 {
		t.Fatalf("input mutated: %v", c)
	}
}

func TestNilItemsBehaveAsEmpty(t *testing.T) {
	var c Items
	got, err := AddItem(c, "p")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got["p"] != 1 {
		t.Fatalf("qty = %d, want 1", got["p"])
	}
	if !DecrementItem(nil, "p").Equal(Items{}) {
		t.Fatal("decrement on nil should be empty")
	}
}

func TestNormalizeDropsInvalidEntries(t *testing.T) {
	got := Normalize(Items{" a ": 2, "a": 1, "": 3, "z": 0, "n": -1})
	want := Items{"a": 3}
	if !got.Equal(want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
}

func TestNewRequiresUID(t *testing.T) {
	if _, err := New(" ", nil, time.Now()); err != ErrInvalidCart {
		t.Fatalf("err = %v, want %v", err, ErrInvalidCart)
	}
	c, err := New("u1", Items{"a": 1}, time.Now())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.ID != "u1" || c.Items.Count() != 1 {
		t.Fatalf("unexpected cart %+v", c)
	}
}
