package interfaces

import (
	"context"

	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

// PIMPort определяет интерфейс Struct PIM API.
// Отсутствующая сущность возвращается как nil без ошибки.
type PIMPort interface {
	GetCatalogues(ctx context.Context) ([]models.CatalogueModel, error)
	GetCategoryIDs(ctx context.Context) ([]int, error)
	GetCategories(ctx context.Context, ids []int) ([]models.CategoryModel, error)
	GetCategory(ctx context.Context, id int) (*models.CategoryModel, error)

	GetProductIDs(ctx context.Context) ([]int, error)
	GetProducts(ctx context.Context, ids []int) ([]models.ProductModel, error)
	// ListProducts возвращает первые limit товаров
	ListProducts(ctx context.Context, limit int) ([]models.ProductModel, error)
	GetProductClassifications(ctx context.Context, productID int) ([]models.ProductClassificationModel, error)
	GetProductAttributeValues(ctx context.Context, productID int) (*models.AttributeValuesModel, error)

	// GetVariantIDs возвращает все варианты или варианты одного товара
	GetVariantIDs(ctx context.Context, productID *int) ([]int, error)
	GetVariants(ctx context.Context, ids []int) ([]models.VariantModel, error)
	GetVariantAttributeValues(ctx context.Context, variantID int) (*models.AttributeValuesModel, error)

	GetProductStructures(ctx context.Context) ([]models.ProductStructure, error)
	GetProductStructure(ctx context.Context, uid uuid.UUID) (*models.ProductStructure, error)

	GetLanguages(ctx context.Context) ([]models.LanguageModel, error)

	// GetAttributes возвращает атрибуты по uid, пустой список означает все атрибуты
	GetAttributes(ctx context.Context, uids []uuid.UUID) ([]models.Attribute, error)
}
