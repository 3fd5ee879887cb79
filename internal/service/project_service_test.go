package service_test

import (
	"context"
	"testing"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/Jox86/sipp-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	env := setupEnv(t)
	owner := env.createUser(t, domain.RoleRequester)
	ctx := context.Background()

	dto, err := env.projectSvc.Create(ctx, &domain.CreateProjectRequest{
		Name:          "Reforma de oficinas",
		OwnerID:       owner.ID.String(),
		Budget:        25000,
		ProjectNumber: "PRJ-2026-001",
		EndDate:       "2026-12-31",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, dto.OwnerID)
	assert.Equal(t, float64(25000), dto.Budget)
	assert.Equal(t, float64(25000), dto.RemainingBudget)
	assert.Equal(t, "2026-12-31", dto.EndDate)
	assert.Equal(t, domain.ProjectStatusActive, dto.Status)
}

func TestCreateProjectClampsNegativeBudget(t *testing.T) {
	env := setupEnv(t)
	owner := env.createUser(t, domain.RoleRequester)

	dto, err := env.projectSvc.Create(context.Background(), &domain.CreateProjectRequest{
		Name:    "Proyecto raro",
		OwnerID: owner.ID.String(),
		Budget:  -500,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(0), dto.Budget)
}

func TestCreateProjectUnknownOwner(t *testing.T) {
	env := setupEnv(t)

	_, err := env.projectSvc.Create(context.Background(), &domain.CreateProjectRequest{
		Name:    "Proyecto huérfano",
		OwnerID: uuid.NewString(),
		Budget:  100,
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestGetProjectReportsCommittedBudget(t *testing.T) {
	env := setupEnv(t)
	owner := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, owner, 1000)

	env.checkoutAdHoc(t, owner, project, "productos", 400)

	dto, err := env.projectSvc.Get(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(400), dto.CommittedBudget)
	assert.Equal(t, float64(600), dto.RemainingBudget)
}

func TestUpdateProjectPatchesFields(t *testing.T) {
	env := setupEnv(t)
	owner := env.createUser(t, domain.RoleRequester)
	project := env.createProject(t, owner, 1000)

	name := "Nombre nuevo"
	budget := 2000.0
	dto, err := env.projectSvc.Update(context.Background(), project.ID, &domain.UpdateProjectRequest{
		Name:   &name,
		Budget: &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "Nombre nuevo", dto.Name)
	assert.Equal(t, float64(2000), dto.Budget)
	// Untouched fields survive the patch
	assert.Equal(t, project.ProjectNumber, dto.ProjectNumber)
}
