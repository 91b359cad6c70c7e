package hunter

import (
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"github.com/lordfcde/sharkwatch/internal/markethours"
	"github.com/lordfcde/sharkwatch/internal/model"
)

// Feeds disagree on field names; each value is resolved through a fallback
// priority list, once, at this boundary. The rest of the pipeline only ever
// sees a validated model.Tick.
var (
	priceKeys  = []string{"lastPrice", "matchPrice", "price"}
	volumeKeys = []string{"lastVol", "matchVol", "vol", "matchQuantity", "matchVolume"}
)

var errMalformedTick = errors.New("hunter: malformed tick payload")

// ScaleConfig resolves the feed's unit ambiguities.
type ScaleConfig struct {
	// PriceThousands: prices below this bound are quoted in thousands of
	// VND and multiplied by 1000.
	PriceThousands float64
	// VolumeScale converts raw matched volume to shares. Feed-specific;
	// the vendor has changed this unit before, so it stays configuration.
	VolumeScale float64
}

// DefaultScaleConfig returns the production scale settings.
func DefaultScaleConfig() ScaleConfig {
	return ScaleConfig{PriceThousands: 1000, VolumeScale: 10}
}

// NormalizePrice resolves the price unit ambiguity: quotes under the
// thousands bound are thousands of VND.
func (sc ScaleConfig) NormalizePrice(raw float64) float64 {
	if raw > 0 && raw < sc.PriceThousands {
		return raw * 1000
	}
	return raw
}

// ParseTick converts a raw feed payload into a validated Tick.
// Missing numeric fields resolve to 0, which the notional filter then
// discards: a malformed tick is skipped, never an exception.
func ParseTick(raw []byte, sc ScaleConfig, now time.Time) (model.Tick, error) {
	if !gjson.ValidBytes(raw) {
		return model.Tick{}, errMalformedTick
	}
	doc := gjson.ParseBytes(raw)

	symbol := doc.Get("symbol").String()
	if symbol == "" {
		return model.Tick{}, errMalformedTick
	}

	price := sc.NormalizePrice(firstFloat(doc, priceKeys))
	volume := firstFloat(doc, volumeKeys) * sc.VolumeScale

	tick := model.Tick{
		Symbol:        symbol,
		Price:         price,
		MatchedVolume: volume,
		SessionVolume: doc.Get("totalVolumeTraded").Float(),
		ChangePercent: doc.Get("changedRatio").Float(),
		Side:          parseSide(doc.Get("side")),
		Time:          parseMatchTime(doc.Get("time").String(), now),
	}
	return tick, nil
}

func firstFloat(doc gjson.Result, keys []string) float64 {
	for _, k := range keys {
		if v := doc.Get(k); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

// parseSide maps the feed's side code: 1=Buy, 2=Sell, anything else Unknown.
func parseSide(v gjson.Result) model.Side {
	switch v.Int() {
	case 1:
		return model.SideBuy
	case 2:
		return model.SideSell
	default:
		return model.SideUnknown
	}
}

// parseMatchTime attaches today's date (ICT) to the feed's HH:MM:SS match
// time. An absent or unparseable time falls back to now.
func parseMatchTime(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	t, err := time.ParseInLocation("15:04:05", s, markethours.ICT)
	if err != nil {
		return now
	}
	local := now.In(markethours.ICT)
	return time.Date(local.Year(), local.Month(), local.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, markethours.ICT)
}
