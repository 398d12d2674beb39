package interfaces

import (
	"context"

	"github.com/athebyme/struct-commerce-sync/pkg/models"
)

// Outcome исход вызова Commercetools
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeRemoteError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "remote_error"
	}
}

// Result результат вызова Commercetools. Ожидаемые отказы удаленной стороны
// возвращаются значением, а не ошибкой.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	// Message текст ошибки, тело ответа предпочтительнее общего сообщения
	Message string
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeOK}
}

func NotFound[T any]() Result[T] {
	return Result[T]{Outcome: OutcomeNotFound, Message: "not found"}
}

func RemoteError[T any](message string) Result[T] {
	return Result[T]{Outcome: OutcomeRemoteError, Message: message}
}

func (r Result[T]) IsOK() bool       { return r.Outcome == OutcomeOK }
func (r Result[T]) IsNotFound() bool { return r.Outcome == OutcomeNotFound }

// CommercePort определяет интерфейс Commercetools API в рамках одного проекта
type CommercePort interface {
	GetCategoryByKey(ctx context.Context, key string) Result[*models.Category]
	GetCategoryByID(ctx context.Context, id string) Result[*models.Category]
	CreateCategory(ctx context.Context, draft models.CategoryDraft) Result[*models.Category]
	UpdateCategory(ctx context.Context, key string, update models.Update) Result[*models.Category]
	DeleteCategory(ctx context.Context, key string, version int64) Result[*models.Category]

	GetProductTypeByKey(ctx context.Context, key string) Result[*models.ProductType]
	CreateProductType(ctx context.Context, draft models.ProductTypeDraft) Result[*models.ProductType]
	UpdateProductType(ctx context.Context, key string, update models.Update) Result[*models.ProductType]
	DeleteProductType(ctx context.Context, key string, version int64) Result[*models.ProductType]

	// GetProductByKey читает товар, expand перечисляет раскрываемые ссылки
	GetProductByKey(ctx context.Context, key string, expand ...string) Result[*models.Product]
	CreateProduct(ctx context.Context, draft models.ProductDraft) Result[*models.Product]
	UpdateProduct(ctx context.Context, key string, update models.Update) Result[*models.Product]
	DeleteProduct(ctx context.Context, key string, version int64) Result[*models.Product]

	GetProject(ctx context.Context) Result[*models.Project]
	UpdateProject(ctx context.Context, update models.Update) Result[*models.Project]

	GetCustomObject(ctx context.Context, container, key string) Result[*models.CustomObject]
	UpsertCustomObject(ctx context.Context, draft models.CustomObjectDraft) Result[*models.CustomObject]
}
