package services

import (
	"context"
	"errors"
	"testing"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	commerce  *fakeCommerce
	pim       *fakePIM
	runs      *fakeRuns
	scope     *Scope
	catalogue uuid.UUID
	structure models.ProductStructure
}

// newImportFixture каталог Struct с пустым Commercetools
func newImportFixture(t *testing.T, opts Options) *importFixture {
	t.Helper()
	catalog := newCatalogFixture(t, Options{})

	pim := catalog.pim
	catalogue := uuid.New()
	pim.catalogues = []models.CatalogueModel{{Uid: catalogue, Alias: "Master"}}
	one := 1
	pim.categories[1] = models.CategoryModel{Id: 1, CatalogueUid: catalogue, Name: map[string]string{"en-GB": "Shoes"}}
	pim.categories[2] = models.CategoryModel{Id: 2, ParentId: &one, CatalogueUid: catalogue, Name: map[string]string{"en-GB": "Running"}}
	pim.languages = []models.LanguageModel{{CultureCode: "en-GB"}}

	commerce := newFakeCommerce()
	runs := &fakeRuns{}
	scope := NewFactory(commerce, pim, logger.NewNopLogger(), opts).WithRunStore(runs).NewScope()

	return &importFixture{
		commerce:  commerce,
		pim:       pim,
		runs:      runs,
		scope:     scope,
		catalogue: catalogue,
		structure: catalog.structure,
	}
}

func TestImporter_RunInitialImport(t *testing.T) {
	f := newImportFixture(t, Options{RollBackOnFailure: true, IncludeProductStructureAliases: []string{"all"}})

	err := f.scope.Importer.RunInitialImport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, f.commerce.project.Languages)
	assert.Contains(t, f.commerce.categories, keys.FromUID(f.catalogue))
	assert.Contains(t, f.commerce.categories, "struct_1")
	assert.Contains(t, f.commerce.categories, "struct_2")
	assert.Contains(t, f.commerce.productTypes, keys.FromUID(f.structure.Uid))

	product := f.commerce.products["struct_10"]
	require.NotNil(t, product)
	assert.True(t, product.HasVariant("struct_100"))
	assert.Zero(t, f.scope.Imports.Pending())

	require.Len(t, f.runs.saved, 2)
	assert.Equal(t, RunKindInitial, f.runs.saved[1].Kind)
	assert.True(t, f.runs.saved[1].Succeeded)
	assert.NotNil(t, f.runs.saved[1].FinishedAt)
}

func TestImporter_RunInitialImportRollsBack(t *testing.T) {
	f := newImportFixture(t, Options{RollBackOnFailure: true})
	typeKey := keys.FromUID(f.structure.Uid)
	f.commerce.fail["createProductType:"+typeKey] = "invalid attribute"

	err := f.scope.Importer.RunInitialImport(context.Background())

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, []string{"Failed to create the product type " + typeKey + " in Commercetools."}, importErr.Errors)
	assert.Empty(t, f.commerce.callsWithPrefix("deleteProductType:"))

	// созданные категории и каталог удалены, товары не создавались
	assert.Empty(t, f.commerce.categories)
	assert.Empty(t, f.commerce.callsWithPrefix("createProduct:"))
	assert.Equal(t, []string{
		"deleteCategory:struct_2",
		"deleteCategory:struct_1",
		"deleteCategory:" + keys.FromUID(f.catalogue),
	}, f.commerce.callsWithPrefix("deleteCategory:"))

	last := f.runs.saved[len(f.runs.saved)-1]
	assert.False(t, last.Succeeded)
	assert.Equal(t, importErr.Errors, last.Errors)
}

func TestImporter_RollbackDeletesOnlyCreated(t *testing.T) {
	f := newImportFixture(t, Options{RollBackOnFailure: true})
	f.commerce.fail["createCategory:struct_2"] = "duplicate slug"

	err := f.scope.Importer.RunInitialImport(context.Background())

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, []string{"Failed to create the category struct_2 in Commercetools."}, importErr.Errors)
	assert.Equal(t, "Failed to create the category struct_2 in Commercetools.", err.Error())

	// struct_2 не создана и не удаляется
	assert.Equal(t, []string{
		"deleteCategory:struct_1",
		"deleteCategory:" + keys.FromUID(f.catalogue),
	}, f.commerce.callsWithPrefix("deleteCategory:"))
	assert.Empty(t, f.commerce.categories)
}

func TestImporter_RunInitialImportReadFailure(t *testing.T) {
	f := newImportFixture(t, Options{RollBackOnFailure: true})
	f.pim.errs["GetCategories"] = assert.AnError

	err := f.scope.Importer.RunInitialImport(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read the categories from Struct PIM.")
	assert.Empty(t, f.commerce.categories)
}

func TestImporter_RunCleanNotAllowed(t *testing.T) {
	f := newImportFixture(t, Options{})

	errs, err := f.scope.Importer.RunClean(context.Background())
	assert.ErrorIs(t, err, ErrCleanNotAllowed)
	assert.Nil(t, errs)
	assert.Empty(t, f.commerce.Calls())
}

func TestImporter_RunClean(t *testing.T) {
	f := newImportFixture(t, Options{AllowCleanCommerce: true, IncludeProductStructureAliases: []string{"all"}})
	ctx := context.Background()
	require.NoError(t, f.scope.Importer.RunInitialImport(ctx))

	errs, err := f.scope.Importer.RunClean(ctx)
	require.NoError(t, err)
	assert.Empty(t, errs)

	assert.Empty(t, f.commerce.products)
	assert.Empty(t, f.commerce.productTypes)
	assert.Empty(t, f.commerce.categories)

	// варианты, товары, типы товаров, категории, каталоги
	calls := f.commerce.Calls()
	index := func(call string) int {
		for i, c := range calls {
			if c == call {
				return i
			}
		}
		t.Fatalf("call %s not found", call)
		return -1
	}
	updates := f.commerce.updates["struct_10"]
	require.GreaterOrEqual(t, len(updates), 2)
	assert.IsType(t, models.ProductRemoveVariant{}, updates[len(updates)-2].Actions[0])
	assert.Equal(t, []models.UpdateAction{models.ProductUnpublish{}}, updates[len(updates)-1].Actions)

	deleteProduct := index("deleteProduct:struct_10@5")
	assert.Less(t, deleteProduct, index("deleteProductType:"+keys.FromUID(f.structure.Uid)))
	assert.Less(t, index("deleteProductType:"+keys.FromUID(f.structure.Uid)), index("deleteCategory:struct_2"))
	assert.Less(t, index("deleteCategory:struct_1"), index("deleteCategory:"+keys.FromUID(f.catalogue)))
}

func TestImporter_RunCleanVariantReadFailure(t *testing.T) {
	f := newImportFixture(t, Options{AllowCleanCommerce: true, IncludeProductStructureAliases: []string{"all"}})
	ctx := context.Background()
	require.NoError(t, f.scope.Importer.RunInitialImport(ctx))
	f.pim.errs["GetVariants"] = assert.AnError

	errs, err := f.scope.Importer.RunClean(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Failed to read the variants from Struct PIM."}, errs)

	// остальные шаги очистки выполнены
	assert.Empty(t, f.commerce.products)
	assert.Empty(t, f.commerce.categories)
}
