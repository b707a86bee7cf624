package studio

import (
	"sync"

	"github.com/samber/lo"

	"glitchstudio/pkg/glitch"
)

func NewHistory(max int) *History {
	return &History{max: max}
}

// History keeps the last few downloaded renders.
type History struct {
	l     sync.Mutex
	max   int
	items []*HistoryLog
}

type HistoryLog struct {
	Name      string
	Effect    glitch.Effect
	Intensity int
	Output    *glitch.PixelBuffer
}

func (h *History) push(item *HistoryLog) {
	h.l.Lock()
	defer h.l.Unlock()

	h.items = append(h.items, item)
	if len(h.items) > h.max {
		h.items = h.items[1:]
	}
}

func (h *History) Logs() []*HistoryLog {
	h.l.Lock()
	defer h.l.Unlock()
	return append([]*HistoryLog(nil), h.items...)
}

func (h *History) Add(name string, eff glitch.Effect, intensity int, out *glitch.PixelBuffer) {
	h.push(&HistoryLog{Name: name, Effect: eff, Intensity: intensity, Output: out})
}

func (h *History) Curr() *HistoryLog {
	return h.nth(-1)
}

func (h *History) Prev() *HistoryLog {
	return h.nth(-2)
}

func (h *History) nth(n int) *HistoryLog {
	h.l.Lock()
	defer h.l.Unlock()

	log, _ := lo.Nth(h.items, n)
	return log
}
