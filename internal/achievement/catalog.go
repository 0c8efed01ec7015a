// Package achievement holds the fixed achievement catalog, the pure unlock
// rules evaluated after each completed session and the per-user unlock store.
package achievement

const (
	FirstStep    = "first_step"
	Distance5K   = "distance_5k"
	Distance10K  = "distance_10k"
	DistanceHalf = "distance_half_marathon"
	DistanceFull = "distance_marathon"
	Time1Hour    = "time_1hour"
	Time2Hours   = "time_2hours"
	Streak7Days  = "streak_7days"
	Streak30Days = "streak_30days"
	Total100K    = "total_100k"
	Total500K    = "total_500k"
	Count10      = "count_10"
)

type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var catalog = []Definition{
	{FirstStep, "First Step", "Complete your first hike", "👣"},
	{Distance5K, "5K Walker", "Hike 5 km in a single session", "🎯"},
	{Distance10K, "10K Challenge", "Hike 10 km in a single session", "🏃"},
	{DistanceHalf, "Half Marathon", "Hike 21 km in a single session", "🏅"},
	{DistanceFull, "Marathon", "Hike 42 km in a single session", "🏆"},
	{Time1Hour, "One Hour Out", "Hike for more than 1 hour", "⏰"},
	{Time2Hours, "Endurance", "Hike for more than 2 hours", "💪"},
	{Streak7Days, "Week Streak", "Hike 7 days in a row", "🔥"},
	{Streak30Days, "Month Streak", "Hike 30 days in a row", "⭐"},
	{Total100K, "100 km Club", "Hike 100 km in total", "🌟"},
	{Total500K, "Long March", "Hike 500 km in total", "🚀"},
	{Count10, "Perfect Ten", "Complete 10 hikes", "🎊"},
}

// Catalog returns a copy of every definition in display order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

func Lookup(id string) (Definition, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}
