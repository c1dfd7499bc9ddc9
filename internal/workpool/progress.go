package workpool

// Progress receives one tick per processed item. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ProgressFunc builds a Progress for a named batch of total items.
type ProgressFunc func(desc string, total int) Progress

// Start returns a Progress from f, or a no-op one when f is nil or there is
// nothing to count.
func (f ProgressFunc) Start(desc string, total int) Progress {
	if f == nil || total <= 0 {
		return nopProgress{}
	}
	return f(desc, total)
}

type nopProgress struct{}

func (nopProgress) Add(int) error { return nil }
func (nopProgress) Finish() error { return nil }
