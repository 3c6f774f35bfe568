package loader

// VisibilityTrigger watches a single row: the tail of the rendered list.
// It fires at most once per target and re-arms whenever the target changes.
type VisibilityTrigger struct {
	target string
	fired  bool
}

// Retarget points the trigger at rowID. An empty id means the list is empty
// and waiting for its first row. Reports whether the target changed.
func (t *VisibilityTrigger) Retarget(rowID string) bool {
	if rowID == t.target {
		return false
	}
	t.target = rowID
	t.fired = false
	return true
}

// Target returns the observed row id.
func (t *VisibilityTrigger) Target() string {
	return t.target
}

// Intersect reports whether rowID entering the viewport should load more.
// An empty target observes nothing.
func (t *VisibilityTrigger) Intersect(rowID string) bool {
	if t.fired || t.target == "" || rowID != t.target {
		return false
	}
	t.fired = true
	return true
}
