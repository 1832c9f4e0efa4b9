package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/repository"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

var errConnectionReset = errors.New("connection reset by peer")

// failingStore hands out units of work whose commit always fails.
type failingStore struct {
	inner unitOfWorkFactory
}

func (f failingStore) Begin() repository.UnitOfWork {
	return &failingUnitOfWork{UnitOfWork: f.inner.Begin()}
}

type failingUnitOfWork struct {
	repository.UnitOfWork
}

func (u *failingUnitOfWork) SaveChanges(ctx context.Context) error {
	u.UnitOfWork.Discard()
	return &repository.CommitError{Op: "commit", Err: errConnectionReset}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newSchool returns a store holding three students, two courses and one
// enrollment (Alexander in Chemistry, grade A).
func newSchool(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore(nil)
	uow := store.Begin()
	defer uow.Discard()

	uow.AddStudent(&models.Student{LastName: "Alexander", FirstMidName: "Carson", EnrollmentDate: date(2010, 9, 1)})
	uow.AddStudent(&models.Student{LastName: "Alonso", FirstMidName: "Meredith", EnrollmentDate: date(2012, 9, 1)})
	uow.AddStudent(&models.Student{LastName: "Anand", FirstMidName: "Arturo", EnrollmentDate: date(2013, 9, 1)})
	uow.AddCourse(&models.Course{ID: 1050, Title: "Chemistry", Credits: 3})
	uow.AddCourse(&models.Course{ID: 4022, Title: "Microeconomics", Credits: 3})
	require.NoError(t, uow.SaveChanges(context.Background()))

	grade := models.GradeA
	uow.AddEnrollment(&models.Enrollment{StudentID: 1, CourseID: 1050, Grade: &grade})
	require.NoError(t, uow.SaveChanges(context.Background()))
	return store
}

func requireCode(t *testing.T, err error, expected *appErrors.Error) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, expected.Code, appErr.Code, appErr.Error())
	return appErr
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}
