package mapper

import (
	"time"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
)

// UserToExportRow converts entity to export row
func UserToExportRow(u *entity.User) dto.ExportUserRow {
	return dto.ExportUserRow{
		Id:        u.Id,
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func UsersToExportRows(users []*entity.User) []dto.ExportUserRow {
	rows := make([]dto.ExportUserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserToExportRow(u))
	}
	return rows
}

// MealToExportRow converts entity to export row
func MealToExportRow(m *entity.Meal) dto.ExportMealRow {
	return dto.ExportMealRow{
		Id:       m.Id,
		UserId:   m.UserId,
		MealType: string(m.MealType),
		MealDate: m.MealDate,
		Status:   string(m.Status),
	}
}

func MealsToExportRows(meals []*entity.Meal) []dto.ExportMealRow {
	rows := make([]dto.ExportMealRow, 0, len(meals))
	for _, m := range meals {
		rows = append(rows, MealToExportRow(m))
	}
	return rows
}

// SubscriptionToAdminResponse reports the status as seen at now, so lapsed rows read as expired.
func SubscriptionToAdminResponse(s *entity.Subscription, now time.Time) *dto.AdminSubscriptionResponse {
	return &dto.AdminSubscriptionResponse{
		Id:        s.Id,
		UserId:    s.UserId,
		PlanType:  string(s.PlanType),
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Status:    string(s.EffectiveStatus(now)),
	}
}

func SubscriptionsToAdminResponse(subs []*entity.Subscription, now time.Time) []*dto.AdminSubscriptionResponse {
	res := make([]*dto.AdminSubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		res = append(res, SubscriptionToAdminResponse(s, now))
	}
	return res
}
