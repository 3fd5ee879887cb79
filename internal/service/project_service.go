package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/mapper"
	"github.com/Jox86/sipp-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService handles project management. Creation and edits are
// administrative; budget figures on returned DTOs are always derived.
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	orderRepo   *repository.OrderRepository
	userRepo    *repository.UserRepository
	logger      *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo *repository.ProjectRepository, orderRepo *repository.OrderRepository, userRepo *repository.UserRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Create creates a new project owned by a requester
func (s *ProjectService) Create(ctx context.Context, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	budget := req.Budget
	if budget < 0 {
		budget = 0
	}

	project := &domain.Project{
		Name:          req.Name,
		OwnerID:       ownerID,
		Budget:        budget,
		CostCenter:    req.CostCenter,
		ProjectNumber: req.ProjectNumber,
		Area:          req.Area,
		AreaType:      req.AreaType,
		Status:        domain.ProjectStatusActive,
	}
	if req.Status != "" {
		project.Status = domain.ProjectStatus(req.Status)
	}
	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return nil, ErrInvalidInput
		}
		project.EndDate = &endDate
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("projectId", project.ID.String()),
		zap.String("name", project.Name),
		zap.Float64("budget", project.Budget))

	dto := mapper.ToProjectDTO(project, 0)
	return &dto, nil
}

// Get retrieves a project with derived budget figures
func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	committed, err := s.orderRepo.SumCommitted(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum committed orders: %w", err)
	}

	dto := mapper.ToProjectDTO(project, committed)
	return &dto, nil
}

// List returns projects, optionally scoped to an owner, with derived budget
// figures per project
func (s *ProjectService) List(ctx context.Context, ownerID *uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	projects, total, err := s.projectRepo.List(ctx, ownerID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, 0, len(projects))
	for i := range projects {
		committed, err := s.orderRepo.SumCommitted(ctx, projects[i].ID, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to sum committed orders: %w", err)
		}
		dtos = append(dtos, mapper.ToProjectDTO(&projects[i], committed))
	}

	if pageSize < 1 {
		pageSize = 50
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update applies administrative edits to a project
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Budget != nil {
		budget := *req.Budget
		if budget < 0 {
			budget = 0
		}
		project.Budget = budget
	}
	if req.CostCenter != nil {
		project.CostCenter = *req.CostCenter
	}
	if req.Area != nil {
		project.Area = *req.Area
	}
	if req.AreaType != nil {
		project.AreaType = *req.AreaType
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			project.EndDate = nil
		} else {
			endDate, err := time.Parse("2006-01-02", *req.EndDate)
			if err != nil {
				return nil, ErrInvalidInput
			}
			project.EndDate = &endDate
		}
	}
	if req.Status != nil {
		project.Status = domain.ProjectStatus(*req.Status)
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	committed, err := s.orderRepo.SumCommitted(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum committed orders: %w", err)
	}

	dto := mapper.ToProjectDTO(project, committed)
	return &dto, nil
}
