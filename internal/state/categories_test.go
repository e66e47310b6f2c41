package state

import (
	"errors"
	"testing"

	"github.com/RachelRYuan/Blogen/internal/blogen"
)

func TestCategoryStore(t *testing.T) {
	var c CategoryStore
	if _, ok := c.PageInfo(); ok {
		t.Fatal("empty store should have no page info")
	}

	info := &blogen.PageInfo{TotalElements: 2, TotalPages: 1, PageSize: 20}
	c.Set([]blogen.Category{{ID: 1, Name: "Business"}, {ID: 2, Name: "Tech"}}, info)
	info.TotalElements = 99
	if got, ok := c.PageInfo(); !ok || got.TotalElements != 2 {
		t.Fatalf("PageInfo = %+v, %v; want copy with 2 elements", got, ok)
	}

	c.Append(blogen.Category{ID: 3, Name: "Health"})
	if err := c.ReplaceByID(blogen.Category{ID: 2, Name: "Technology"}); err != nil {
		t.Fatalf("ReplaceByID returned error: %v", err)
	}
	if err := c.ReplaceByID(blogen.Category{ID: 9, Name: "Nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReplaceByID missing err = %v, want ErrNotFound", err)
	}

	cats := c.Categories()
	want := []string{"Business", "Technology", "Health"}
	if len(cats) != len(want) {
		t.Fatalf("categories = %+v", cats)
	}
	for i, name := range want {
		if cats[i].Name != name {
			t.Fatalf("categories[%d] = %q, want %q", i, cats[i].Name, name)
		}
	}

	cats[0].Name = "mutated"
	if got, _ := c.Find(1); got.Name != "Business" {
		t.Fatal("Categories should return a copy")
	}
	if _, ok := c.Find(42); ok {
		t.Fatal("Find(42) should miss")
	}
}
