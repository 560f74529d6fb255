package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bousai-navi/backend/internal/catalog"
	"github.com/bousai-navi/backend/internal/storage/models"
)

type memStore struct {
	users map[int64]*models.User
	lists map[string]string
	// inserts counts InsertProductList calls; the cache is append-only so a
	// later insert for the same key just shadows the previous value here.
	inserts int
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*models.User),
		lists: make(map[string]string),
	}
}

func (s *memStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users[id], nil
}

func (s *memStore) GetLatestProductList(ctx context.Context, userID int64, compositionHash string) (*models.CachedProductList, error) {
	data, ok := s.lists[compositionHash]
	if !ok {
		return nil, nil
	}
	return &models.CachedProductList{
		UserID:          userID,
		CompositionHash: compositionHash,
		ProductData:     data,
	}, nil
}

func (s *memStore) InsertProductList(ctx context.Context, userID int64, compositionHash, productData string) error {
	s.inserts++
	s.lists[compositionHash] = productData
	return nil
}

type fakeExtractor struct {
	keywords []string
	err      error
	calls    int
}

func (f *fakeExtractor) Extract(ctx context.Context, profile models.HouseholdProfile) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.keywords, nil
}

type fakeSearcher struct {
	err   error
	calls int
}

func (f *fakeSearcher) SearchWithProgress(ctx context.Context, keywords []string, progress catalog.ProgressFunc) ([]catalog.GroupedResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	results := make([]catalog.GroupedResult, len(keywords))
	for i, kw := range keywords {
		results[i] = catalog.GroupedResult{
			Keyword:  kw,
			Products: []catalog.Product{{ID: kw + "-1", Name: kw + " product"}},
		}
	}
	return results, nil
}

func testUser(id int64, profile models.HouseholdProfile) *models.User {
	return &models.User{ID: id, Username: "tester", HouseholdProfile: profile}
}

func TestGenerateFreshList(t *testing.T) {
	store := newMemStore()
	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 2, Children: 1})
	extractor := &fakeExtractor{keywords: []string{"防災セット", "非常食"}}
	searcher := &fakeSearcher{}

	gen := NewGenerator(store, nil, extractor, searcher)

	results, cached, err := gen.Generate(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, results, 2)
	assert.Equal(t, "防災セット", results[0].Keyword)
	assert.Equal(t, "非常食", results[1].Keyword)
	assert.Equal(t, 1, store.inserts)
}

func TestGenerateSecondCallServedFromCache(t *testing.T) {
	store := newMemStore()
	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 2})
	extractor := &fakeExtractor{keywords: []string{"水"}}
	searcher := &fakeSearcher{}

	gen := NewGenerator(store, nil, extractor, searcher)

	first, cached, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, cached)

	second, cached, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)

	// Neither the extractor nor the searcher runs on a hit.
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, 1, store.inserts)
}

func TestGenerateChangedCompositionMissesCache(t *testing.T) {
	store := newMemStore()
	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 2})
	extractor := &fakeExtractor{keywords: []string{"水"}}
	searcher := &fakeSearcher{}

	gen := NewGenerator(store, nil, extractor, searcher)

	_, _, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)

	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 2, HasPet: true})

	_, cached, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, extractor.calls)
	assert.Equal(t, 2, store.inserts)
}

func TestGenerateRevertedCompositionHitsOldEntry(t *testing.T) {
	store := newMemStore()
	original := models.HouseholdProfile{Adults: 2}
	store.users[1] = testUser(1, original)
	extractor := &fakeExtractor{keywords: []string{"水"}}
	searcher := &fakeSearcher{}

	gen := NewGenerator(store, nil, extractor, searcher)

	_, _, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)

	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 3})
	_, _, err = gen.Generate(context.Background(), 1)
	require.NoError(t, err)

	// Reverting to the original composition finds the first entry again.
	store.users[1] = testUser(1, original)
	_, cached, err := gen.Generate(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 2, extractor.calls)
}

func TestGenerateUnknownUser(t *testing.T) {
	gen := NewGenerator(newMemStore(), nil, &fakeExtractor{}, &fakeSearcher{})

	_, _, err := gen.Generate(context.Background(), 42)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGenerateExtractorFailureNothingPersisted(t *testing.T) {
	store := newMemStore()
	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 1})
	extractor := &fakeExtractor{err: ErrInvalidAIOutput}

	gen := NewGenerator(store, nil, extractor, &fakeSearcher{})

	_, _, err := gen.Generate(context.Background(), 1)

	assert.ErrorIs(t, err, ErrInvalidAIOutput)
	assert.Equal(t, 0, store.inserts)
}

func TestGenerateSearchFailureNothingPersisted(t *testing.T) {
	store := newMemStore()
	store.users[1] = testUser(1, models.HouseholdProfile{Adults: 1})
	searchErr := errors.New("catalog down")

	gen := NewGenerator(store, nil, &fakeExtractor{keywords: []string{"水"}}, &fakeSearcher{err: searchErr})

	_, _, err := gen.Generate(context.Background(), 1)

	assert.ErrorIs(t, err, searchErr)
	assert.Equal(t, 0, store.inserts)
}

func TestGenerateCorruptCacheEntryRegenerates(t *testing.T) {
	store := newMemStore()
	profile := models.HouseholdProfile{Adults: 1}
	store.users[1] = testUser(1, profile)
	store.lists[Fingerprint(profile)] = "{not valid json"
	extractor := &fakeExtractor{keywords: []string{"水"}}

	gen := NewGenerator(store, nil, extractor, &fakeSearcher{})

	_, cached, err := gen.Generate(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, 1, store.inserts)
}
