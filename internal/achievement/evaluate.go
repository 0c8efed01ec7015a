package achievement

// Record is the part of a completed session the rules look at.
type Record struct {
	DistanceM   float64
	DurationSec int64
}

type rule struct {
	id    string
	match func(session Record, history []Record) bool
}

// rules are checked in catalog order. The streak entries have no rule and so
// are never reported.
var rules = []rule{
	{FirstStep, func(_ Record, h []Record) bool { return len(h) == 1 }},
	{Distance5K, sessionKm(5)},
	{Distance10K, sessionKm(10)},
	{DistanceHalf, sessionKm(21)},
	{DistanceFull, sessionKm(42)},
	{Time1Hour, sessionHours(1)},
	{Time2Hours, sessionHours(2)},
	{Total100K, totalKm(100)},
	{Total500K, totalKm(500)},
	{Count10, func(_ Record, h []Record) bool { return len(h) >= 10 }},
}

// Evaluate returns the achievements newly earned by session. history is the
// user's full history including session; unlocked holds ids already earned,
// which are never reported again.
func Evaluate(session Record, history []Record, unlocked map[string]bool) []Definition {
	var out []Definition
	for _, r := range rules {
		if unlocked[r.id] || !r.match(session, history) {
			continue
		}
		d, _ := Lookup(r.id)
		out = append(out, d)
	}
	return out
}

func sessionKm(km float64) func(Record, []Record) bool {
	return func(s Record, _ []Record) bool { return s.DistanceM/1000 >= km }
}

func sessionHours(h float64) func(Record, []Record) bool {
	return func(s Record, _ []Record) bool { return float64(s.DurationSec)/3600 >= h }
}

func totalKm(km float64) func(Record, []Record) bool {
	return func(_ Record, history []Record) bool {
		total := 0.0
		for _, r := range history {
			total += r.DistanceM
		}
		return total/1000 >= km
	}
}
