package entity

type CategoryCount struct {
	MealType MealCategory
	Count    int64
}
