package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/usecase"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/memory"
)

func TestProductUseCase_CrearYActualizar(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.New().Products())
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: " ARZ-1 ", Name: "Arroz", Category: "granos", Price: decimal.NewFromInt(2500), MinStock: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "ARZ-1", p.Code)
	assert.True(t, p.Stock.IsZero())
	assert.True(t, p.Cost.IsZero())
	assert.True(t, p.Active)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "ARZ-1", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	name := "Arroz Premium"
	price := decimal.NewFromInt(2800)
	upd, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Arroz Premium", upd.Name)
	assert.True(t, upd.Price.Equal(price))
	assert.Equal(t, "granos", upd.Category)

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arroz Premium", got.Name)

	missing, err := uc.Update(ctx, "nope", dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductUseCase_Validaciones(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.New().Products())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Code: "", Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "A", Name: "x", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "A", Name: "x"})
	require.NoError(t, err)
	blank := "  "
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	neg := decimal.NewFromInt(-3)
	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{MinStock: &neg})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_DesactivarYListar(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.New().Products())
	ctx := context.Background()

	a, err := uc.Create(ctx, dto.CreateProductRequest{Code: "A", Name: "Uno"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "B", Name: "Dos"})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(ctx, a.ID))
	assert.ErrorIs(t, uc.Deactivate(ctx, "nope"), domain.ErrNotFound)

	list, err := uc.List(ctx, repository.ProductFilter{OnlyActive: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "B", list.Items[0].Code)
	assert.Equal(t, 10, list.Page.Limit)

	got, err := uc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Active, "desactivado sigue consultable")

	require.NoError(t, uc.Activate(ctx, a.ID))
	list, err = uc.List(ctx, repository.ProductFilter{OnlyActive: true})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}
