package commercetools

import (
	"context"
	"net/http"
	"net/url"

	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

const (
	resourceCategories    = "categories"
	resourceProductTypes  = "product-types"
	resourceProducts      = "products"
	resourceProject       = "project"
	resourceCustomObjects = "custom-objects"
)

var _ interfaces.CommercePort = (*Client)(nil)

// Категории

func (c *Client) GetCategoryByKey(ctx context.Context, key string) interfaces.Result[*models.Category] {
	return call[*models.Category](ctx, c, request{
		method: http.MethodGet, resource: resourceCategories, path: byKey(resourceCategories, key),
	})
}

func (c *Client) GetCategoryByID(ctx context.Context, id string) interfaces.Result[*models.Category] {
	return call[*models.Category](ctx, c, request{
		method: http.MethodGet, resource: resourceCategories, path: byID(resourceCategories, id),
	})
}

func (c *Client) CreateCategory(ctx context.Context, draft models.CategoryDraft) interfaces.Result[*models.Category] {
	return call[*models.Category](ctx, c, request{
		method: http.MethodPost, resource: resourceCategories, path: "/" + resourceCategories, body: draft,
	})
}

func (c *Client) UpdateCategory(ctx context.Context, key string, update models.Update) interfaces.Result[*models.Category] {
	return call[*models.Category](ctx, c, request{
		method: http.MethodPost, resource: resourceCategories, path: byKey(resourceCategories, key), body: update,
	})
}

func (c *Client) DeleteCategory(ctx context.Context, key string, version int64) interfaces.Result[*models.Category] {
	return call[*models.Category](ctx, c, request{
		method: http.MethodDelete, resource: resourceCategories, path: byKey(resourceCategories, key), query: withVersion(version),
	})
}

// Типы товаров

func (c *Client) GetProductTypeByKey(ctx context.Context, key string) interfaces.Result[*models.ProductType] {
	return call[*models.ProductType](ctx, c, request{
		method: http.MethodGet, resource: resourceProductTypes, path: byKey(resourceProductTypes, key),
	})
}

func (c *Client) CreateProductType(ctx context.Context, draft models.ProductTypeDraft) interfaces.Result[*models.ProductType] {
	return call[*models.ProductType](ctx, c, request{
		method: http.MethodPost, resource: resourceProductTypes, path: "/" + resourceProductTypes, body: draft,
	})
}

func (c *Client) UpdateProductType(ctx context.Context, key string, update models.Update) interfaces.Result[*models.ProductType] {
	return call[*models.ProductType](ctx, c, request{
		method: http.MethodPost, resource: resourceProductTypes, path: byKey(resourceProductTypes, key), body: update,
	})
}

func (c *Client) DeleteProductType(ctx context.Context, key string, version int64) interfaces.Result[*models.ProductType] {
	return call[*models.ProductType](ctx, c, request{
		method: http.MethodDelete, resource: resourceProductTypes, path: byKey(resourceProductTypes, key), query: withVersion(version),
	})
}

// Товары

func (c *Client) GetProductByKey(ctx context.Context, key string, expand ...string) interfaces.Result[*models.Product] {
	return call[*models.Product](ctx, c, request{
		method: http.MethodGet, resource: resourceProducts, path: byKey(resourceProducts, key), query: withExpand(expand),
	})
}

func (c *Client) CreateProduct(ctx context.Context, draft models.ProductDraft) interfaces.Result[*models.Product] {
	return call[*models.Product](ctx, c, request{
		method: http.MethodPost, resource: resourceProducts, path: "/" + resourceProducts, body: draft,
	})
}

func (c *Client) UpdateProduct(ctx context.Context, key string, update models.Update) interfaces.Result[*models.Product] {
	return call[*models.Product](ctx, c, request{
		method: http.MethodPost, resource: resourceProducts, path: byKey(resourceProducts, key), body: update,
	})
}

func (c *Client) DeleteProduct(ctx context.Context, key string, version int64) interfaces.Result[*models.Product] {
	return call[*models.Product](ctx, c, request{
		method: http.MethodDelete, resource: resourceProducts, path: byKey(resourceProducts, key), query: withVersion(version),
	})
}

// Проект

func (c *Client) GetProject(ctx context.Context) interfaces.Result[*models.Project] {
	return call[*models.Project](ctx, c, request{method: http.MethodGet, resource: resourceProject})
}

func (c *Client) UpdateProject(ctx context.Context, update models.Update) interfaces.Result[*models.Project] {
	return call[*models.Project](ctx, c, request{method: http.MethodPost, resource: resourceProject, body: update})
}

// Произвольные документы

func (c *Client) GetCustomObject(ctx context.Context, container, key string) interfaces.Result[*models.CustomObject] {
	return call[*models.CustomObject](ctx, c, request{
		method:   http.MethodGet,
		resource: resourceCustomObjects,
		path:     "/" + resourceCustomObjects + "/" + url.PathEscape(container) + "/" + url.PathEscape(key),
	})
}

func (c *Client) UpsertCustomObject(ctx context.Context, draft models.CustomObjectDraft) interfaces.Result[*models.CustomObject] {
	return call[*models.CustomObject](ctx, c, request{
		method: http.MethodPost, resource: resourceCustomObjects, path: "/" + resourceCustomObjects, body: draft,
	})
}
