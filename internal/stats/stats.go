package stats

type DaysStat struct {
	Period    string `json:"period"` // "week", "month", "year", "all_time"
	MeatDays  int    `json:"meat_days"`
	TotalDays int    `json:"total_days"`
}

type UserStats struct {
	TodayStatus       bool    `json:"today_status"`
	MeatDaysThisWeek  int     `json:"meat_days_this_week"`
	MeatDaysThisMonth int     `json:"meat_days_this_month"`
	MeatDaysThisYear  int     `json:"meat_days_this_year"`
	TotalMeatDays     int     `json:"total_meat_days"`
	TotalEvents       int     `json:"total_events"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	MeatFreeWeeks     int     `json:"meat_free_weeks"`
	AchievementsCount int     `json:"achievements_count"`
	DisciplineScore   float64 `json:"discipline_score"`
}
