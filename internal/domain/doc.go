// Package domain models station discharge readings and the exceedance curves
// used to turn them into warning levels.
//
// # Exceedance Curves
//
// Each monitoring station has a flow-duration (exceedance) curve derived from
// its historical discharge record. A point on the curve pairs an exceedance
// probability with a discharge:
//
//	10% -> 40 m^3/s   means a flow of 40 m^3/s is equaled or exceeded 10% of the time.
//
// Probability falls as discharge rises. Curves are loaded once per run from
// a curve table (see adapter/table) and are immutable afterwards.
//
// Estimating the exceedance of a reading follows four rules, in order:
//
//	exact match       a reading equal to a curve discharge gets that point's probability
//	above the curve   a reading above the largest discharge gets 0
//	below the curve   a reading below the smallest discharge gets 100
//	in between        linear interpolation between the two bracketing points
//
// The exact-match rule runs first, so a reading equal to the curve maximum
// returns its own probability rather than 0.
//
// # Warning Levels
//
// A [LevelMapping] assigns a warning level to each probability threshold. The
// default mapping is:
//
//	level 1: 50%   level 2: 20%   level 3: 10%   level 4: 5%   level 5: 2%
//
// An exceedance of exactly 100 is level 0 (no warning). A probability equal to
// a threshold gets that level. A probability below every threshold gets one
// level above the mapping's highest level (6 for the default). Anything else
// gets the smallest level whose threshold lies strictly below it.
//
// # Time
//
// [StationLevel] records carry a ClassifiedAt timestamp taken from a
// package-level clock that tests replace via [SetClock].
package domain
