// Package progression holds the pure functions that derive levels and daily streaks.
package progression

import (
	"fmt"
	"math"
	"time"

	"chat_economy/internal/models"
)

const (
	// XPPerLevel is the amount of XP separating two levels.
	XPPerLevel = 1000

	// DailyBonusPerStreak is the extra daily reward per streak step.
	DailyBonusPerStreak = 50
	// DailyBonusCap bounds the streak bonus.
	DailyBonusCap = 500

	streakMinGap = 24 * time.Hour
	streakMaxGap = 48 * time.Hour
)

// Level maps XP to a level: floor(xp / 1000) + 1.
func Level(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// NextStreak computes the streak for a daily claim made at now.
// A first claim starts at 0, a claim 24h to 48h (inclusive) after the previous one
// continues the streak, and a claim more than 48h later resets it to 0.
// Claims less than 24h apart keep the previous value.
func NextStreak(prev int, last *time.Time, now time.Time) int {
	if last == nil {
		return 0
	}
	gap := now.Sub(*last)
	switch {
	case gap > streakMaxGap:
		return 0
	case gap >= streakMinGap:
		return prev + 1
	default:
		return prev
	}
}

// DailyBonus returns min(streak*50, 500).
func DailyBonus(streak int) int64 {
	if streak <= 0 {
		return 0
	}
	return min(int64(streak)*DailyBonusPerStreak, DailyBonusCap)
}

// DailyReward returns the coins granted by a daily claim.
func DailyReward(base int64, streak int) int64 {
	return base + DailyBonus(streak)
}

// ScaleXP applies the global XP multiplier, flooring the result.
func ScaleXP(xp int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return 0
	}
	return int64(math.Floor(float64(xp) * multiplier))
}

// CheckLevel returns an error when the stored level disagrees with the XP.
func CheckLevel(a *models.Account) error {
	if want := Level(a.XP); a.Level != want {
		return fmt.Errorf("progression: account %s has level %d for %d xp, want %d", a.ID, a.Level, a.XP, want)
	}
	return nil
}
