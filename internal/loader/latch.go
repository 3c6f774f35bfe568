package loader

// Latch turns a level signal ("the collection changed") into one event per
// rising edge. It arms when the signal goes from false to true and stays
// disarmed after Take until the signal has dropped and risen again, so
// repeated deliveries of the same change fire once.
type Latch struct {
	level bool
	armed bool
}

// Observe records the current signal level.
func (l *Latch) Observe(level bool) {
	if level && !l.level {
		l.armed = true
	}
	l.level = level
}

// Take reports whether the latch was armed and disarms it.
func (l *Latch) Take() bool {
	fired := l.armed
	l.armed = false
	return fired
}
