// README: Popular-times trend import and the built-in Gangnam demo venues.
package venue

import (
	"fmt"

	"crowdradar/internal/modules/busyness"
	"crowdradar/internal/types"
)

// ScalePercent converts a popular-times percentage to a 0-10 busyness level.
func ScalePercent(p int) int {
	lvl := p / 10
	if lvl < busyness.MinLevel {
		return busyness.MinLevel
	}
	if lvl > busyness.MaxLevel {
		return busyness.MaxLevel
	}
	return lvl
}

// AverageWeeklyTrend averages per-hour popular-times percentages across the
// given days and scales the result to busyness levels. Every day must have
// 24 entries.
func AverageWeeklyTrend(days [][]int) ([]int, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no days", ErrBadRequest)
	}
	sums := make([]int, busyness.TrendHours)
	for d, day := range days {
		if len(day) != busyness.TrendHours {
			return nil, fmt.Errorf("%w: day %d has %d hours", ErrBadRequest, d, len(day))
		}
		for h, v := range day {
			sums[h] += v
		}
	}
	trend := make([]int, busyness.TrendHours)
	for h, sum := range sums {
		trend[h] = ScalePercent(sum / len(days))
	}
	return trend, nil
}

// TrendFromBars builds a trend from the bars of a single popular-times
// graph, which starts at 06:00. Hours without a bar stay zero.
func TrendFromBars(percents []int) []int {
	trend := make([]int, busyness.TrendHours)
	for i, p := range percents {
		if i >= busyness.TrendHours {
			break
		}
		trend[(6+i)%busyness.TrendHours] = ScalePercent(p)
	}
	return trend
}

// DemoVenues are the cafes around Gangnam Station used for local demos,
// each with a seed report level.
func DemoVenues() []Venue {
	return []Venue{
		demo("demo-starbucks-gangnam-r", "Starbucks Gangnam R", 37.4978, 127.0286, 9),
		demo("demo-blue-bottle", "Blue Bottle Coffee", 37.4971, 127.0282, 5),
		demo("demo-starbucks-yeoksam", "Starbucks Yeoksam", 37.4992, 127.0295, 7),
		demo("demo-twosome-place", "Twosome Place", 37.4985, 127.0260, 3),
		demo("demo-ediya", "Ediya Coffee", 37.4965, 127.0255, 2),
		demo("demo-coffee-bean", "Coffee Bean & Tea Leaf", 37.4988, 127.0278, 6),
		demo("demo-mega-coffee", "Mega Coffee", 37.4975, 127.0290, 8),
		demo("demo-paul-bassett", "Paul Bassett", 37.4995, 127.0265, 4),
		demo("demo-dunkin-gangnam", "Dunkin' Gangnam", 37.4968, 127.0270, 5),
		demo("demo-hollys", "Hollys Coffee", 37.4982, 127.0250, 3),
	}
}

func demo(id, name string, lat, lng float64, seed int) Venue {
	return Venue{
		ID:       types.ID(id),
		Name:     name,
		Location: types.Point{Lat: lat, Lng: lng},
		Seed:     seed,
	}
}
