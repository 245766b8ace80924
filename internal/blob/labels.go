package blob

import (
	"container/list"

	"github.com/MeKo-Tech/seedtrace/internal/mempool"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// compStats summarizes one connected region.
type compStats struct {
	count      int
	minX, minY int
	maxX, maxY int
	// first pixel in raster order
	seedX, seedY int
	touchesEdge  bool
}

var (
	neighbours8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	neighbours4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// labeling assigns 1-based labels to foreground components (8-connected) and
// negative labels to background regions (4-connected).
type labeling struct {
	w, h   int
	labels []int32
	fg     []compStats
	bg     []compStats
}

func newLabeling(img trace.Image, withBackground bool) *labeling {
	w, h := img.Width(), img.Height()
	lb := &labeling{w: w, h: h, labels: mempool.GetInt32(w * h)}

	for y := range h {
		for x := range w {
			idx := y*w + x
			if lb.labels[idx] != 0 {
				continue
			}
			if img.IsForeground(x, y) {
				label := int32(len(lb.fg) + 1)
				lb.fg = append(lb.fg, lb.fill(img, x, y, label, true, neighbours8))
			} else if withBackground {
				label := -int32(len(lb.bg) + 1)
				lb.bg = append(lb.bg, lb.fill(img, x, y, label, false, neighbours4))
			}
		}
	}
	return lb
}

// release hands the label buffer back to the pool.
func (lb *labeling) release() {
	mempool.PutInt32(lb.labels)
	lb.labels = nil
}

func (lb *labeling) at(x, y int) int32 {
	return lb.labels[y*lb.w+x]
}

// fill labels the region containing (startX, startY) by breadth-first search.
func (lb *labeling) fill(img trace.Image, startX, startY int, label int32, fg bool, dirs [][2]int) compStats {
	w, h := lb.w, lb.h
	st := compStats{minX: startX, minY: startY, maxX: startX, maxY: startY, seedX: startX, seedY: startY}

	q := list.New()
	q.PushBack(startY*w + startX)
	lb.labels[startY*w+startX] = label

	for q.Len() > 0 {
		e := q.Front()
		q.Remove(e)
		ci, ok := e.Value.(int)
		if !ok {
			continue
		}
		cx, cy := ci%w, ci/w
		updateStats(&st, cx, cy, w, h)

		for _, d := range dirs {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx
			if lb.labels[ni] != 0 || img.IsForeground(nx, ny) != fg {
				continue
			}
			lb.labels[ni] = label
			q.PushBack(ni)
		}
	}
	return st
}

func updateStats(st *compStats, cx, cy, w, h int) {
	st.count++
	if cx < st.minX {
		st.minX = cx
	}
	if cy < st.minY {
		st.minY = cy
	}
	if cx > st.maxX {
		st.maxX = cx
	}
	if cy > st.maxY {
		st.maxY = cy
	}
	if cx == 0 || cy == 0 || cx == w-1 || cy == h-1 {
		st.touchesEdge = true
	}
}
