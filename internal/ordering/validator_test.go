package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/storage/memory"
)

// MockMenuRepository is a mock implementation of domain.MenuRepository.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockMenuRepository) ApplyChanges(ctx context.Context, changes domain.CatalogChanges) error {
	args := m.Called(ctx, changes)
	return args.Error(0)
}

func (m *MockMenuRepository) FindByArticle(ctx context.Context, article string) (domain.MenuItem, error) {
	args := m.Called(ctx, article)
	return args.Get(0).(domain.MenuItem), args.Error(1)
}

func (m *MockMenuRepository) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.MenuItem), args.Error(1)
}

func seededRepo(t *testing.T) domain.MenuRepository {
	t.Helper()
	repo := memory.NewMenuRepository()
	err := repo.ApplyChanges(context.Background(), domain.CatalogChanges{
		Inserts: []domain.MenuItem{
			{ID: "id-1", Article: "A1", Name: "Soup", Price: decimal.NewFromInt(5)},
			{ID: "id-2", Article: "A2", Name: "Cheese", Price: decimal.NewFromInt(12), IsWeighted: true},
		},
	})
	require.NoError(t, err)
	return repo
}

func qty(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidate_ResolvesArticlesToIDs(t *testing.T) {
	v := NewValidator(seededRepo(t), nil)

	items, err := v.Validate(context.Background(), []domain.ParsedOrderLine{
		{Article: "A2", Quantity: qty("0.5")},
		{Article: "A1", Quantity: qty("2")},
	}).Get()

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "id-2", items[0].MenuItemID)
	assert.True(t, qty("0.5").Equal(items[0].Quantity))
	assert.Equal(t, "id-1", items[1].MenuItemID)
	assert.True(t, qty("2").Equal(items[1].Quantity))
}

func TestValidate_FailFastOnMissingArticle(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMenuRepository)
	repo.On("FindByArticle", ctx, "A1").Return(domain.MenuItem{ID: "id-1", Article: "A1"}, nil).Once()
	repo.On("FindByArticle", ctx, "A9").Return(domain.MenuItem{}, domain.ErrMenuItemNotFound).Once()

	res := NewValidator(repo, nil).Validate(ctx, []domain.ParsedOrderLine{
		{Article: "A1", Quantity: qty("1")},
		{Article: "A9", Quantity: qty("1")},
		{Article: "A7", Quantity: qty("1")},
	})

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodeNotFound, res.Err().Code)
	assert.Contains(t, res.Err().Message, `"A9"`)
	assert.True(t, domain.IsRecoverable(res.Err()))
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "FindByArticle", ctx, "A7")
}

func TestValidate_RepositoryFailureIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMenuRepository)
	repo.On("FindByArticle", ctx, "A1").Return(domain.MenuItem{}, errors.New("connection refused"))

	res := NewValidator(repo, nil).Validate(ctx, []domain.ParsedOrderLine{{Article: "A1", Quantity: qty("1")}})

	require.True(t, res.IsFailure())
	assert.Equal(t, domain.CodePersistence, res.Err().Code)
	assert.False(t, domain.IsRecoverable(res.Err()))
}

func TestValidate_DoesNotMutateCatalog(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	before, err := repo.ListAll(ctx)
	require.NoError(t, err)

	NewValidator(repo, nil).Validate(ctx, []domain.ParsedOrderLine{{Article: "A1", Quantity: qty("3")}})

	after, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestNewOrder(t *testing.T) {
	first := NewOrder()
	second := NewOrder()

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Empty(t, first.Items)
}
