package deadline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dueboard/backend/internal/models"
)

// memStore is a map-backed Store for service tests. Attach and Detach are not
// exercised through the service, so they stay unimplemented.
type memStore struct {
	deadlines map[uint]*models.Deadline
	nextID    uint
}

func newMemStore() *memStore {
	return &memStore{deadlines: make(map[uint]*models.Deadline), nextID: 1}
}

func (s *memStore) Create(ctx context.Context, d *models.Deadline) error {
	d.ID = s.nextID
	s.nextID++
	clone := *d
	s.deadlines[d.ID] = &clone
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id uint) (*models.Deadline, error) {
	d, ok := s.deadlines[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *d
	return &clone, nil
}

func (s *memStore) List(ctx context.Context, userID uint, filter ListFilter) ([]models.Deadline, int64, error) {
	var out []models.Deadline
	for _, d := range s.deadlines {
		if d.OwnerID == userID {
			out = append(out, *d)
		}
	}
	return out, int64(len(out)), nil
}

func (s *memStore) Save(ctx context.Context, d *models.Deadline) error {
	clone := *d
	s.deadlines[d.ID] = &clone
	return nil
}

func (s *memStore) Delete(ctx context.Context, id uint) error {
	delete(s.deadlines, id)
	return nil
}

func (s *memStore) Upcoming(ctx context.Context, userID uint, within time.Duration) ([]models.Deadline, error) {
	cutoff := time.Now().Add(within)
	var out []models.Deadline
	for _, d := range s.deadlines {
		if d.OwnerID != userID {
			continue
		}
		if d.Status == models.DeadlineCompleted || d.Status == models.DeadlineCancelled {
			continue
		}
		if d.DueDate.After(time.Now()) && d.DueDate.Before(cutoff) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *memStore) Overdue(ctx context.Context, userID uint) ([]models.Deadline, error) {
	var out []models.Deadline
	for _, d := range s.deadlines {
		if d.OwnerID != userID {
			continue
		}
		if d.Status == models.DeadlineCompleted || d.Status == models.DeadlineCancelled {
			continue
		}
		if d.DueDate.Before(time.Now()) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *memStore) Stats(ctx context.Context, userID uint) (*Stats, error) {
	return &Stats{}, nil
}

func (s *memStore) Attach(ctx context.Context, input AttachInput) (*AttachResult, error) {
	panic("not used in service tests")
}

func (s *memStore) Detach(ctx context.Context, deadlineID, userID uint) (bool, error) {
	panic("not used in service tests")
}

func validInput() CreateInput {
	return CreateInput{
		Title:          "Submit lab report",
		Subject:        "Chemistry",
		Priority:       models.PriorityHigh,
		DueDate:        time.Now().Add(48 * time.Hour),
		EstimatedHours: 3,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	d, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Equal(t, uint(1), d.OwnerID)
	assert.Equal(t, "Submit lab report", d.Title)
	assert.Equal(t, models.DeadlinePending, d.Status)
}

func TestCreateDefaults(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	input := validInput()
	input.Priority = ""
	input.Status = ""
	d, err := service.Create(ctx, 1, input)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, d.Priority)
	assert.Equal(t, models.DeadlinePending, d.Status)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"blank title", func(in *CreateInput) { in.Title = "   " }},
		{"zero due date", func(in *CreateInput) { in.DueDate = time.Time{} }},
		{"unknown priority", func(in *CreateInput) { in.Priority = "urgent" }},
		{"unknown status", func(in *CreateInput) { in.Status = "done" }},
		{"completion over 100", func(in *CreateInput) { in.CompletionPercentage = 120 }},
		{"negative hours", func(in *CreateInput) { in.EstimatedHours = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := service.Create(ctx, 1, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGetVisibility(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewService(store)

	d, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	// Owner sees it.
	_, err = service.Get(ctx, 1, d.ID)
	assert.NoError(t, err)

	// A stranger gets not-found, not forbidden: existence stays hidden.
	_, err = service.Get(ctx, 2, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// An attached collaborator sees it.
	store.deadlines[d.ID].Collaborators = []models.CollaboratorAttachment{
		{DeadlineID: d.ID, UserID: 2, Role: models.RoleCollaborator},
	}
	_, err = service.Get(ctx, 2, d.ID)
	assert.NoError(t, err)
}

func TestUpdateOwnerOnly(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	d, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	input := validInput()
	input.Title = "Renamed"
	_, err = service.Update(ctx, 2, d.ID, input)
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := service.Update(ctx, 1, d.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	d, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	updated, err := service.UpdateStatus(ctx, 1, d.ID, models.DeadlineInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.DeadlineInProgress, updated.Status)

	_, err = service.UpdateStatus(ctx, 1, d.ID, "finished")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.UpdateStatus(ctx, 2, d.ID, models.DeadlineCompleted)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestUpdateStatusCompletedSnapsPercentage(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	input := validInput()
	input.CompletionPercentage = 60
	d, err := service.Create(ctx, 1, input)
	require.NoError(t, err)

	updated, err := service.UpdateStatus(ctx, 1, d.ID, models.DeadlineCompleted)
	require.NoError(t, err)
	assert.Equal(t, 100, updated.CompletionPercentage)
}

func TestDeleteOwnerOnly(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	d, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	err = service.Delete(ctx, 2, d.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	require.NoError(t, service.Delete(ctx, 1, d.ID))
	_, err = service.Get(ctx, 1, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpcomingAndOverdue(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemStore())

	soon := validInput()
	_, err := service.Create(ctx, 1, soon)
	require.NoError(t, err)

	far := validInput()
	far.Title = "Far off"
	far.DueDate = time.Now().Add(30 * 24 * time.Hour)
	_, err = service.Create(ctx, 1, far)
	require.NoError(t, err)

	late := validInput()
	late.Title = "Missed"
	late.DueDate = time.Now().Add(-24 * time.Hour)
	_, err = service.Create(ctx, 1, late)
	require.NoError(t, err)

	upcoming, err := service.Upcoming(ctx, 1, 7)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "Submit lab report", upcoming[0].Title)

	overdue, err := service.Overdue(ctx, 1)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Missed", overdue[0].Title)
}
