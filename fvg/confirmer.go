package fvg

import "github.com/rustyeddy/fvgtrader/market"

// DefaultExpiryBars is how many candles a pending zone survives without
// confirmation before it ages out.
const DefaultExpiryBars = 5

// Confirmer tracks detected-but-unconfirmed zones and decides when a later
// candle confirms or invalidates one. At most one zone is active per
// direction; a newer qualifying gap supersedes the older one.
type Confirmer struct {
	volMult    float64
	expiryBars int

	bullish *Zone
	bearish *Zone
}

func NewConfirmer(volMult float64, expiryBars int) *Confirmer {
	if volMult <= 0 {
		volMult = DefaultVolMult
	}
	if expiryBars <= 0 {
		expiryBars = DefaultExpiryBars
	}
	return &Confirmer{volMult: volMult, expiryBars: expiryBars}
}

// Track adopts a freshly detected zone, superseding any pending zone of the
// same direction. Superseded zones become immutable history.
func (cf *Confirmer) Track(z *Zone) {
	if z == nil || z.State != Pending {
		return
	}
	switch z.Direction {
	case Bullish:
		cf.bullish = z
	case Bearish:
		cf.bearish = z
	}
}

// Active returns the pending zones, newest per direction.
func (cf *Confirmer) Active() []*Zone {
	var zs []*Zone
	if cf.bullish != nil {
		zs = append(zs, cf.bullish)
	}
	if cf.bearish != nil {
		zs = append(zs, cf.bearish)
	}
	return zs
}

// Reset drops all pending zones.
func (cf *Confirmer) Reset() {
	cf.bullish = nil
	cf.bearish = nil
}

// Update advances every pending zone with the new candle and returns a
// trade signal if one confirmed. avgVol is the rolling volume baseline the
// caller computed from the candle store.
//
// State transitions per zone, in order: fill tracking first (a filled zone
// can never confirm), then reversal invalidation, then breakout-plus-volume
// confirmation, then age expiry. Confirmed and Expired are terminal; a
// zone reaches exactly one of them.
func (cf *Confirmer) Update(c market.Candle, avgVol float64) *Signal {
	var sig *Signal

	if s := cf.advance(&cf.bullish, c, avgVol); s != nil {
		sig = s
	}
	if s := cf.advance(&cf.bearish, c, avgVol); s != nil && sig == nil {
		sig = s
	}
	return sig
}

func (cf *Confirmer) advance(slot **Zone, c market.Candle, avgVol float64) *Signal {
	z := *slot
	if z == nil {
		return nil
	}

	z.age++
	z.updateFill(c)

	if z.Fill == Filled || z.reversed(c) {
		z.State = Expired
		*slot = nil
		return nil
	}

	if z.breakout(c) && avgVol > 0 && c.Volume > avgVol*cf.volMult {
		z.State = Confirmed
		*slot = nil
		return &Signal{
			Direction: z.Direction,
			Zone:      z,
			Entry:     c.Close,
			Time:      c.Time,
		}
	}

	if z.age >= cf.expiryBars {
		z.State = Expired
		*slot = nil
	}
	return nil
}
