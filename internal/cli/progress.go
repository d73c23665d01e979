package cli

import (
	"github.com/cheggaaa/pb/v3"
)

// progressBar adapts a pb bar to the func(done, total int) callbacks of the
// classifiers and the window generator. The bar starts on the first update.
type progressBar struct {
	label string
	bar   *pb.ProgressBar
}

func newProgress(label string) *progressBar {
	return &progressBar{label: label}
}

// Update is safe to pass as a progress callback; callers serialize calls.
func (p *progressBar) Update(done, total int) {
	if quiet {
		return
	}
	if p.bar == nil {
		p.bar = pb.Full.Start(total)
		p.bar.Set("prefix", p.label+" ")
	}
	p.bar.SetCurrent(int64(done))
}

func (p *progressBar) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
