package loader

// Cursor tracks the next page to request for the bound identity.
type Cursor struct {
	pageSize   int
	set        LoadedSet
	nextPage   int
	hasMore    bool
	totalCount int
}

// NewCursor returns a reset cursor.
func NewCursor(pageSize int) *Cursor {
	c := &Cursor{pageSize: pageSize}
	c.Reset()
	return c
}

// Reset clears the loaded pages and starts again at page 1.
func (c *Cursor) Reset() {
	c.set.Clear()
	c.nextPage = 1
	c.hasMore = true
	c.totalCount = 0
}

// Advance appends p and recomputes hasMore from the total count it carries.
// nextPage only moves when more pages exist.
func (c *Cursor) Advance(p Page) error {
	if err := c.set.Append(p); err != nil {
		return err
	}
	c.totalCount = p.TotalCount
	c.hasMore = c.set.Len()*c.pageSize < c.totalCount
	if c.hasMore {
		c.nextPage++
	}
	return nil
}

// Set returns the loaded set the cursor appends to.
func (c *Cursor) Set() *LoadedSet {
	return &c.set
}

// NextPage returns the page the loader may request next.
func (c *Cursor) NextPage() int {
	return c.nextPage
}

// HasMore reports whether pages beyond the loaded ones exist.
func (c *Cursor) HasMore() bool {
	return c.hasMore
}

// TotalCount returns the total reported by the latest page.
func (c *Cursor) TotalCount() int {
	return c.totalCount
}

// PageSize returns the configured page size.
func (c *Cursor) PageSize() int {
	return c.pageSize
}
