package service

import (
	"context"

	"meal-ordering-be/internal/dto"
	"meal-ordering-be/internal/entity"
	"meal-ordering-be/internal/mapper"
	"meal-ordering-be/internal/repository/memory"
	"meal-ordering-be/internal/repository/unitofwork"
	"meal-ordering-be/pkg/admin/plan"

	"github.com/google/uuid"
)

type ICatalogService interface {
	// Public
	ListActivePlans(ctx context.Context) ([]*dto.PlanResponse, error)

	// Admin
	ListAllPlans(ctx context.Context) ([]*dto.PlanResponse, error)
	CreatePlan(ctx context.Context, admin entity.Principal, req dto.AdminCreatePlanRequest) (*dto.PlanResponse, error)
	DeactivatePlan(ctx context.Context, admin entity.Principal, id uuid.UUID) (*dto.PlanResponse, error)
}

type catalogService struct {
	uowFactory  unitofwork.RepositoryFactory
	planManager *plan.Manager
	cache       *memory.PlanCache
}

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, planManager *plan.Manager, cache *memory.PlanCache) ICatalogService {
	return &catalogService{
		uowFactory:  uowFactory,
		planManager: planManager,
		cache:       cache,
	}
}

func (s *catalogService) ListActivePlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	if plans, found := s.cache.GetActive(); found {
		return plansToResponse(plans), nil
	}

	plans, err := s.planManager.FindActive(ctx, s.uowFactory.NewUnitOfWork(ctx))
	if err != nil {
		return nil, err
	}
	s.cache.SaveActive(plans)
	return plansToResponse(plans), nil
}

func (s *catalogService) ListAllPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	plans, err := s.planManager.FindAll(ctx, s.uowFactory.NewUnitOfWork(ctx))
	if err != nil {
		return nil, err
	}
	return plansToResponse(plans), nil
}

func (s *catalogService) CreatePlan(ctx context.Context, admin entity.Principal, req dto.AdminCreatePlanRequest) (*dto.PlanResponse, error) {
	created, err := s.planManager.Create(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, req)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return mapper.PlanToResponse(created), nil
}

func (s *catalogService) DeactivatePlan(ctx context.Context, admin entity.Principal, id uuid.UUID) (*dto.PlanResponse, error) {
	deactivated, err := s.planManager.Deactivate(ctx, s.uowFactory.NewUnitOfWork(ctx), admin, id)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return mapper.PlanToResponse(deactivated), nil
}

func plansToResponse(plans []*entity.MealPlan) []*dto.PlanResponse {
	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, mapper.PlanToResponse(p))
	}
	return res
}
