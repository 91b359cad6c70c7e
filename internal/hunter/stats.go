package hunter

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
	"github.com/lordfcde/sharkwatch/internal/ringbuf"
)

// Stats is the reporting side-channel: rolling buy/sell notional totals and
// a bounded trade history. It never blocks or gates the detection path.
type Stats struct {
	mu        sync.Mutex
	buyValue  float64
	sellValue float64
	buyCount  int
	sellCount int
	history   *ringbuf.Ring
	resetDay  time.Time
}

// NewStats creates a stats tracker with the given history capacity.
func NewStats(historyCap int) *Stats {
	return &Stats{history: ringbuf.New(historyCap)}
}

// Record registers a qualifying shark order.
func (st *Stats) Record(ev model.TradeEvent) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch ev.Side {
	case model.SideBuy:
		st.buyValue += ev.Value
		st.buyCount++
	case model.SideSell:
		st.sellValue += ev.Value
		st.sellCount++
	}
	st.history.Push(ev)
}

// MaybeReset clears the daily totals once per trading day at the 08:30
// boundary. Idempotent within a day.
func (st *Stats) MaybeReset(now time.Time) {
	boundary := markethours.DailyResetTime(now)
	if now.Before(boundary) {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.resetDay.Equal(boundary) {
		return
	}
	st.resetDay = boundary
	st.buyValue, st.sellValue = 0, 0
	st.buyCount, st.sellCount = 0, 0
	st.history.Reset()
}

// Totals returns the current buy/sell notional totals in VND.
func (st *Stats) Totals() (buy, sell float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.buyValue, st.sellValue
}

// Report formats the day's shark activity. The snapshot is taken under the
// lock but formatting happens outside it.
func (st *Stats) Report() string {
	st.mu.Lock()
	buyValue, sellValue := st.buyValue, st.sellValue
	buyCount, sellCount := st.buyCount, st.sellCount
	events := st.history.Snapshot()
	st.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "🦈 SHARK TAPE\n")
	fmt.Fprintf(&b, "Buy:  %d orders, %.1f bn VND\n", buyCount, buyValue/1e9)
	fmt.Fprintf(&b, "Sell: %d orders, %.1f bn VND\n", sellCount, sellValue/1e9)

	if len(events) > 0 {
		fmt.Fprintf(&b, "Recent:\n")
		start := 0
		if len(events) > 10 {
			start = len(events) - 10
		}
		for _, ev := range events[start:] {
			fmt.Fprintf(&b, "  %s %s %-4s %.1f bn (%+.2f%%)\n",
				ev.Time.In(markethours.ICT).Format("15:04:05"), sideIcon(ev.Side), ev.Symbol, ev.Value/1e9, ev.ChangePercent)
		}
	}
	return b.String()
}

func sideIcon(s model.Side) string {
	switch s {
	case model.SideBuy:
		return "🟢"
	case model.SideSell:
		return "🔴"
	default:
		return "⚪"
	}
}
