package memdict_test

import (
	"fmt"
	"log"
	"strings"

	"github.com/hupe1980/memdict"
	"github.com/hupe1980/memdict/arena"
)

// Example_float32 indexes a float column and serves lookups against it.
func Example_float32() {
	a := arena.New(arena.DefaultConfig())
	defer a.Close()

	cfg := memdict.DefaultConfig()
	cfg.AllocationContext = "trades.price"

	d, err := memdict.NewFloat32(a, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	for _, v := range []float32{3.0, 1.0, 5.0, 3.0, 2.0} {
		if _, err := d.Index(v); err != nil {
			log.Fatal(err)
		}
	}

	id, ok, _ := d.IndexOfText("5.0")
	minV, _, _ := d.MinValue()
	maxV, _, _ := d.MaxValue()
	sorted, _ := d.SortedValues()
	n, _ := d.Len()

	fmt.Println("len:", n)
	fmt.Println("id of 5.0:", id, ok)
	fmt.Println("min/max:", minV, maxV)
	fmt.Println("sorted:", sorted)
	// Output:
	// len: 4
	// id of 5.0: 2 true
	// min/max: 1 5
	// sorted: [1 2 3 5]
}

// Example_multiValued indexes one multi-valued cell.
func Example_multiValued() {
	a := arena.New(arena.DefaultConfig())
	defer a.Close()

	d, err := memdict.NewString(a, memdict.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	ids, _ := d.IndexValues(strings.Fields("red green red blue"))
	n, _ := d.Len()
	fmt.Println(ids, n)
	// Output: [0 1 0 2] 3
}

// Example_matchRange evaluates a range predicate over every ID.
func Example_matchRange() {
	a := arena.New(arena.DefaultConfig())
	defer a.Close()

	d, err := memdict.NewInt64(a, memdict.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	_, _ = d.IndexValues([]int64{40, 10, 30, 20, 50})

	ids, _ := d.MatchRange("20", "40", true, false)
	fmt.Println(ids.ToArray())
	// Output: [2 3]
}

// Example_loadSettings reads settings from YAML.
func Example_loadSettings() {
	s, err := memdict.LoadSettings(strings.NewReader(`
dictionary:
  estimated_cardinality: 4096
  allocation_context: events.user
arena:
  off_heap: false
`))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(s.Dictionary.EstimatedCardinality, s.Dictionary.AllocationContext, s.Arena.OffHeap)
	// Output: 4096 events.user false
}
