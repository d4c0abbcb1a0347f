package analyses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	*MemoryRepo
	err error
}

func (r failingRepo) Create(context.Context, Record) error { return r.err }

func newTestService(repo Repo) *Service {
	svc := NewService(repo)
	svc.Now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	svc.NewID = func() string { return "analysis-1" }
	return svc
}

func TestPersistStoresRecordForUser(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(repo)

	rec, err := svc.Persist(context.Background(), "user-1", "Go role", Result{MatchScore: 80, KeywordMatchScore: 70})
	require.NoError(t, err)
	assert.Equal(t, "analysis-1", rec.ID)

	got, err := svc.Get(context.Background(), "user-1", "analysis-1")
	require.NoError(t, err)
	assert.Equal(t, "Go role", got.JobDescription)
	assert.Equal(t, 80, got.Analysis.MatchScore)

	list, err := svc.List(context.Background(), "user-1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPersistRejectsInvalidRecords(t *testing.T) {
	svc := newTestService(NewMemoryRepo())
	cases := []struct {
		name   string
		userID string
		jd     string
		result Result
	}{
		{"no user", "", "jd", Result{}},
		{"no job description", "u", "  ", Result{}},
		{"score too high", "u", "jd", Result{MatchScore: 101}},
		{"negative keyword score", "u", "jd", Result{KeywordMatchScore: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Persist(context.Background(), tc.userID, tc.jd, tc.result)
			var perr *PersistenceError
			require.ErrorAs(t, err, &perr)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestPersistWrapsStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := newTestService(failingRepo{MemoryRepo: NewMemoryRepo(), err: storeErr})

	_, err := svc.Persist(context.Background(), "u", "jd", Result{})
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, storeErr)
}
