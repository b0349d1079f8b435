package utils

import "math"

// CalculateDisciplineScore condenses a user's record into one number for the
// stats view: the current streak dominates quadratically, meat-free days and
// badges add a little on top.
func CalculateDisciplineScore(currentStreak, meatFreeDays, achievementsCount int) float64 {
	streakScore := math.Pow(float64(currentStreak), 2) * 0.3
	daysScore := float64(meatFreeDays) * 0.05
	achievementScore := float64(achievementsCount) * 1.0

	return streakScore + daysScore + achievementScore
}
