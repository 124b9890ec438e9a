package model

import (
	"fmt"
	"strings"
)

type TimeWindow string

const (
	Window1M  TimeWindow = "1M"
	Window2M  TimeWindow = "2M"
	Window3M  TimeWindow = "3M"
	WindowAll TimeWindow = "ALL"
)

// TimeWindows lists the windows in the order they are offered to the user.
var TimeWindows = []TimeWindow{Window1M, Window2M, Window3M, WindowAll}

var windowMaxCount = map[TimeWindow]int{
	Window1M: 30,
	Window2M: 60,
	Window3M: 90,
}

var windowLabel = map[TimeWindow]string{
	Window1M:  "1 month",
	Window2M:  "2 months",
	Window3M:  "3 months",
	WindowAll: "All data",
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := windowLabel[w]; !ok {
		return "", fmt.Errorf("unknown time window %q", s)
	}
	return w, nil
}

// MaxCount returns the maximum number of points shown for the window.
// bounded is false for ALL.
func (w TimeWindow) MaxCount() (count int, bounded bool) {
	count, bounded = windowMaxCount[w]
	return count, bounded
}

func (w TimeWindow) Label() string {
	if label, ok := windowLabel[w]; ok {
		return label
	}
	return string(w)
}

// Apply returns the newest points of a newest-first series that fit into the window.
// The result is always a prefix of series.
func (w TimeWindow) Apply(series []PricePoint) []PricePoint {
	maxCount, bounded := w.MaxCount()
	if !bounded || len(series) <= maxCount {
		return series
	}
	return series[:maxCount:maxCount]
}
