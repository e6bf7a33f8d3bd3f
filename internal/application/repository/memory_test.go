package repository

import (
	"context"
	"testing"
	"time"

	"github.com/ThanimaVITC/thanima-connect/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(regNo string) *application.Record {
	return &application.Record{
		Name:                    "Jane Doe",
		RegNo:                   regNo,
		BranchAndYear:           "CSE, 2nd Year",
		Email:                   "jane@x.com",
		Phone:                   "9876543210",
		PrimaryPreference:       "Design",
		SecondaryPreference:     "Media",
		DepartmentJustification: "...",
		SkillsAndExperience:     "...",
		SubmittedAt:             time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryRepoInsertListDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(false)

	id, err := r.Insert(ctx, sampleRecord("24CSE1234"))
	require.NoError(t, err)
	require.Len(t, id, 24)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	s := list[0]
	assert.Equal(t, id, s.ID())
	assert.Equal(t, application.FieldID, s.Keys()[0])
	assert.Equal(t, "24CSE1234", s.Text(application.FieldRegNo))
	assert.Equal(t, "2024-07-01T10:00:00.000Z", s.Text(application.FieldSubmittedAt))
	_, has := s.Get(application.FieldResumeFileID)
	assert.False(t, has, "no file reference field without a résumé")
	_, has = s.Get(application.FieldTertiaryPreference)
	assert.False(t, has)

	require.NoError(t, r.Delete(ctx, id))
	list, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryRepoDeleteUnknown(t *testing.T) {
	r := NewMemoryRepo(false)
	ctx := context.Background()
	_, err := r.Insert(ctx, sampleRecord("24CSE1234"))
	require.NoError(t, err)

	assert.ErrorIs(t, r.Delete(ctx, "65a1b2c3d4e5f60718293a4b"), ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "not-an-id"), ErrNotFound)

	list, _ := r.List(ctx)
	assert.Len(t, list, 1)
}

func TestMemoryRepoUniqueRegNo(t *testing.T) {
	ctx := context.Background()

	lax := NewMemoryRepo(false)
	_, err := lax.Insert(ctx, sampleRecord("24CSE1234"))
	require.NoError(t, err)
	_, err = lax.Insert(ctx, sampleRecord("24CSE1234"))
	require.NoError(t, err)

	strict := NewMemoryRepo(true)
	_, err = strict.Insert(ctx, sampleRecord("24CSE1234"))
	require.NoError(t, err)
	_, err = strict.Insert(ctx, sampleRecord("24CSE1234"))
	assert.ErrorIs(t, err, ErrDuplicate)
	_, err = strict.Insert(ctx, sampleRecord("24CSE9999"))
	assert.NoError(t, err)
}

func TestMemoryRepoKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo(false)
	for _, reg := range []string{"24CSE0001", "24CSE0002", "24CSE0003"} {
		_, err := r.Insert(ctx, sampleRecord(reg))
		require.NoError(t, err)
	}
	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "24CSE0001", list[0].Text(application.FieldRegNo))
	assert.Equal(t, "24CSE0003", list[2].Text(application.FieldRegNo))
}
