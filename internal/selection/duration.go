package selection

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/emamei/internal/meidoc"
	"github.com/dgallion1/emamei/internal/meitree"
)

// CalculateDuration returns the length of an event in beats of the given
// meter, including dots and the ratio of the nearest enclosing tuplet.
func CalculateDuration(event *meitree.Node, meter meidoc.Meter) (float64, error) {
	if meter.Unit <= 0 {
		return 0, meidoc.ErrMeterUnresolved
	}
	den, err := durationDenominator(event.Attr("dur"))
	if err != nil {
		return 0, err
	}

	unit := float64(meter.Unit)
	dur := unit / den

	dotDen := den
	for range DotCount(event) {
		dotDen *= 2
		dur += unit / dotDen
	}

	if tuplet := event.Closest(ns, "tuplet"); tuplet != nil {
		num, okNum := parsePositive(tuplet.Attr("num"))
		numbase, okBase := parsePositive(tuplet.Attr("numbase"))
		if !okNum || !okBase {
			return 0, ErrMalformedTuplet
		}
		dur *= numbase / num
	}
	return dur, nil
}

// DotCount returns @dots when present, else the number of dot children.
func DotCount(event *meitree.Node) int {
	if v, ok := event.LookupAttr("dots"); ok && v != "" {
		n, _ := meidoc.ParseLeadingInt(v)
		return max(n, 0)
	}
	dots := 0
	for _, c := range event.Children() {
		if c.Is(ns, "dot") {
			dots++
		}
	}
	return dots
}

func durationDenominator(dur string) (float64, error) {
	switch dur {
	case "maxima":
		return 0.125, nil
	case "long":
		return 0.25, nil
	case "breve":
		return 0.5, nil
	}
	v, ok := parsePositive(dur)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, dur)
	}
	return v, nil
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
