// Package filter decides which walked paths take part in a copy. A Chain holds
// ordered include/exclude glob rules (first match wins, unmatched paths are
// included) plus optional size bounds for non-directories.
package filter

// Rule represents a single include or exclude filter rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool // true=include, false=exclude
}

// Chain holds an ordered list of filter rules plus size filters.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: false})
	return nil
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: true})
	return nil
}

// Extend appends other's rules after c's, so c's rules take precedence, and
// adopts other's size bounds where c has none.
func (c *Chain) Extend(other *Chain) {
	if other == nil {
		return
	}
	c.rules = append(c.rules, other.rules...)
	if c.minSize == 0 {
		c.minSize = other.minSize
	}
	if c.maxSize == 0 {
		c.maxSize = other.maxSize
	}
}

// SetMinSize sets the minimum file size filter.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size filter.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Ignore builds a chain that excludes every pattern in patterns.
func Ignore(patterns ...string) (*Chain, error) {
	c := NewChain()
	for _, p := range patterns {
		if err := c.AddExclude(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Empty reports whether the chain has no rules and no size filters.
func (c *Chain) Empty() bool {
	if c == nil {
		return true
	}
	return len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0
}

// Match reports whether relPath should be copied. relPath is relative to the
// copy root and size is ignored for directories. A nil Chain matches everything.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	// Size filters apply only to regular files.
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	// first match wins
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}

	return true
}
