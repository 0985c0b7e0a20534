package booking

import (
	"time"

	"meal-ordering-be/internal/entity"

	"github.com/shopspring/decimal"
)

// Categories lists meal slots in serving order.
var Categories = []entity.MealCategory{
	entity.MealCategoryBreakfast,
	entity.MealCategoryLunch,
	entity.MealCategoryDinner,
}

var slotHours = map[entity.MealCategory]int{
	entity.MealCategoryBreakfast: 8,
	entity.MealCategoryLunch:     12,
	entity.MealCategoryDinner:    18,
}

var priceTable = map[entity.MealCategory]decimal.Decimal{
	entity.MealCategoryBreakfast: decimal.RequireFromString("8.00"),
	entity.MealCategoryLunch:     decimal.RequireFromString("12.00"),
	entity.MealCategoryDinner:    decimal.RequireFromString("15.00"),
}

var defaultPrice = decimal.RequireFromString("10.00")

// PriceFor returns the one-time price of a meal category.
func PriceFor(category entity.MealCategory) decimal.Decimal {
	if price, ok := priceTable[category]; ok {
		return price
	}
	return defaultPrice
}

// DayStart truncates t to midnight in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ScheduledAt places a category at its wall-clock hour on the calendar day of day.
func ScheduledAt(day time.Time, category entity.MealCategory, loc *time.Location) time.Time {
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), slotHours[category], 0, 0, 0, loc)
}

type Slot struct {
	Category entity.MealCategory
	At       time.Time
}

// ExpandSubscription yields every slot from the day of start to the day of end, both inclusive.
func ExpandSubscription(start, end time.Time, loc *time.Location) []Slot {
	first := DayStart(start, loc)
	last := DayStart(end, loc)

	var slots []Slot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, category := range Categories {
			slots = append(slots, Slot{Category: category, At: ScheduledAt(day, category, loc)})
		}
	}
	return slots
}

func slotKey(category entity.MealCategory, at time.Time, loc *time.Location) string {
	return string(category) + "@" + at.In(loc).Format("2006-01-02")
}
