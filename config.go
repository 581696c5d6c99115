package memdict

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/memdict/arena"
	"github.com/hupe1980/memdict/internal/hashindex"
	"github.com/hupe1980/memdict/internal/valuestore"
	"github.com/hupe1980/memdict/resource"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultEstimatedCardinality sizes the identity index and the first value buffer.
	DefaultEstimatedCardinality = 1024
	// DefaultMaxOverflowSize bounds the identity index overflow list.
	DefaultMaxOverflowSize = hashindex.DefaultMaxOverflow
	// DefaultSlotsPerBucket is the number of inline entries per identity index bucket.
	DefaultSlotsPerBucket = 3
	// DefaultAllocationContext labels allocations when no column name is set.
	DefaultAllocationContext = "dictionary"

	maxSlotsPerBucket = 64
)

// Config configures a single dictionary.
type Config struct {
	// EstimatedCardinality is the expected number of distinct values. The
	// identity index has the next power of two >= it buckets, and the value
	// store starts at that many slots. It is a sizing hint, not a limit.
	EstimatedCardinality int `yaml:"estimated_cardinality"`

	// MaxOverflowSize bounds the identity index overflow list. When it is
	// reached, the next full bucket adds an index level twice the size and the
	// list moves into it. The list only grows past the bound when a level
	// cannot be added (allocation failure, colliding hashes); that is logged
	// and metered, and values are still accepted. 0 selects the default.
	MaxOverflowSize int `yaml:"max_overflow_size"`

	// SlotsPerBucket is the inline capacity of each identity index bucket.
	SlotsPerBucket int `yaml:"slots_per_bucket"`

	// AllocationContext labels every allocation (typically the column name).
	AllocationContext string `yaml:"allocation_context"`

	// VarPageSize is the page size for variable-width values. 0 selects
	// valuestore.DefaultPageSize.
	VarPageSize int `yaml:"var_page_size"`
}

// DefaultConfig returns the default dictionary configuration.
func DefaultConfig() Config {
	return Config{
		EstimatedCardinality: DefaultEstimatedCardinality,
		MaxOverflowSize:      DefaultMaxOverflowSize,
		SlotsPerBucket:       DefaultSlotsPerBucket,
		AllocationContext:    DefaultAllocationContext,
		VarPageSize:          valuestore.DefaultPageSize,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.EstimatedCardinality < 0 {
		return fmt.Errorf("%w: estimated_cardinality must be >= 0, got %d", ErrInvalidConfig, c.EstimatedCardinality)
	}
	if c.MaxOverflowSize < 0 {
		return fmt.Errorf("%w: max_overflow_size must be >= 0, got %d", ErrInvalidConfig, c.MaxOverflowSize)
	}
	if c.SlotsPerBucket < 0 || c.SlotsPerBucket > maxSlotsPerBucket {
		return fmt.Errorf("%w: slots_per_bucket must be in [0, %d], got %d", ErrInvalidConfig, maxSlotsPerBucket, c.SlotsPerBucket)
	}
	if c.VarPageSize < 0 {
		return fmt.Errorf("%w: var_page_size must be >= 0, got %d", ErrInvalidConfig, c.VarPageSize)
	}
	return nil
}

// withDefaults fills zero fields.
func (c Config) withDefaults() Config {
	if c.EstimatedCardinality == 0 {
		c.EstimatedCardinality = DefaultEstimatedCardinality
	}
	if c.MaxOverflowSize == 0 {
		c.MaxOverflowSize = DefaultMaxOverflowSize
	}
	if c.SlotsPerBucket == 0 {
		c.SlotsPerBucket = DefaultSlotsPerBucket
	}
	if c.AllocationContext == "" {
		c.AllocationContext = DefaultAllocationContext
	}
	if c.VarPageSize == 0 {
		c.VarPageSize = valuestore.DefaultPageSize
	}
	return c
}

// Settings groups the configuration of a dictionary and its allocator stack.
type Settings struct {
	Dictionary Config          `yaml:"dictionary"`
	Arena      arena.Config    `yaml:"arena"`
	Resource   resource.Config `yaml:"resource"`
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		Dictionary: DefaultConfig(),
		Arena:      arena.DefaultConfig(),
	}
}

// LoadSettings decodes YAML settings from r on top of DefaultSettings.
// Unknown fields are rejected. An empty document yields the defaults.
//
// Example:
//
//	dictionary:
//	  estimated_cardinality: 100000
//	  allocation_context: events.price
//	arena:
//	  off_heap: true
//	  acquire_timeout: 250ms
//	resource:
//	  memory_limit_bytes: 1073741824
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := s.Dictionary.Validate(); err != nil {
		return Settings{}, err
	}
	if s.Resource.MemoryLimitBytes < 0 {
		return Settings{}, fmt.Errorf("%w: memory_limit_bytes must be >= 0", ErrInvalidConfig)
	}
	return s, nil
}
