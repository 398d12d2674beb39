package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/athebyme/struct-commerce-sync/pkg/utils"
	"github.com/google/uuid"
)

// ErrCleanNotAllowed возвращается RunClean, если очистка запрещена настройками
var ErrCleanNotAllowed = errors.New("clean not allowed")

// Виды запусков в журнале
const (
	RunKindInitial = "initial"
	RunKindClean   = "clean"
)

// Importer выполняет первичный импорт и очистку Commercetools
type Importer struct {
	pim          interfaces.PIMPort
	categories   *CategoryService
	productTypes *ProductTypeService
	products     *ProductVariantService
	settings     *ProjectSettingsService
	imports      *ImportService
	errors       *ErrorService
	runs         interfaces.StoragePort
	options      Options
	logger       interfaces.LoggerPort
}

// RunInitialImport переносит языки, каталоги, категории, структуры товаров,
// товары и варианты. Первый шаг с ошибками прерывает импорт и возвращает *ImportError.
// Пачки товаров и вариантов фиксируются независимо.
// Откат удаляет только сущности, созданные этим запуском.
func (i *Importer) RunInitialImport(ctx context.Context) (err error) {
	ctx, run := i.startRun(ctx, RunKindInitial)
	defer func() {
		var errs []string
		if err != nil {
			var importErr *ImportError
			if errors.As(err, &importErr) {
				errs = importErr.Errors
			} else {
				errs = []string{err.Error()}
			}
		}
		i.finishRun(ctx, run, errs)
	}()

	if err := i.step(ctx, "languages", func(ctx context.Context) {
		i.settings.CreateLanguages(ctx)
	}, nil); err != nil {
		return err
	}

	var catalogues []models.CatalogueModel
	if err := i.read(ctx, "catalogues", func() (err error) {
		catalogues, err = i.pim.GetCatalogues(ctx)
		return err
	}); err != nil {
		return err
	}
	var createdCatalogues []models.CatalogueModel
	if err := i.step(ctx, "catalogues", func(ctx context.Context) {
		createdCatalogues = i.categories.CreateCatalogues(ctx, catalogues)
	}, func(ctx context.Context) {
		i.categories.DeleteCatalogues(ctx, catalogueUIDs(createdCatalogues))
	}); err != nil {
		return err
	}

	var categoryIDs []int
	var categories []models.CategoryModel
	if err := i.read(ctx, "categories", func() (err error) {
		if categoryIDs, err = i.pim.GetCategoryIDs(ctx); err != nil || len(categoryIDs) == 0 {
			return err
		}
		categories, err = i.pim.GetCategories(ctx, categoryIDs)
		return err
	}); err != nil {
		return err
	}
	var createdCategories []int
	if err := i.step(ctx, "categories", func(ctx context.Context) {
		createdCategories = i.categories.CreateCategories(ctx, categories)
	}, func(ctx context.Context) {
		i.categories.DeleteCategories(ctx, createdCategories)
	}); err != nil {
		return err
	}

	var structures []models.ProductStructure
	if err := i.read(ctx, "product structures", func() (err error) {
		structures, err = i.pim.GetProductStructures(ctx)
		return err
	}); err != nil {
		return err
	}
	var createdTypes []models.ProductStructure
	if err := i.step(ctx, "product_types", func(ctx context.Context) {
		createdTypes = i.productTypes.CreateMany(ctx, structures, i.options.IncludeProductStructureAliases)
	}, func(ctx context.Context) {
		i.productTypes.DeleteMany(ctx, createdTypes)
	}); err != nil {
		return err
	}

	if err := i.importProducts(ctx); err != nil {
		return err
	}
	if err := i.importVariants(ctx); err != nil {
		return err
	}

	i.imports.Discard()
	i.logger.InfoWithContext(ctx, "Первичный импорт завершен")
	return nil
}

func (i *Importer) importProducts(ctx context.Context) error {
	var productIDs []int
	if err := i.read(ctx, "product ids", func() (err error) {
		productIDs, err = i.pim.GetProductIDs(ctx)
		return err
	}); err != nil {
		return err
	}

	for n, batch := range utils.Batch(productIDs, i.options.batchSize()) {
		var products []models.ProductModel
		if err := i.read(ctx, "products", func() (err error) {
			products, err = i.pim.GetProducts(ctx, batch)
			return err
		}); err != nil {
			return err
		}
		if len(products) == 0 {
			continue
		}

		i.logger.InfoWithContext(ctx, "Импорт пачки товаров",
			interfaces.LogField{Key: "batch", Value: n + 1},
			interfaces.LogField{Key: "size", Value: len(products)},
		)
		var created []int
		if err := i.step(ctx, "products", func(ctx context.Context) {
			created = i.products.CreateProducts(ctx, products)
		}, func(ctx context.Context) {
			i.products.DeleteProducts(ctx, created)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (i *Importer) importVariants(ctx context.Context) error {
	var variantIDs []int
	if err := i.read(ctx, "variant ids", func() (err error) {
		variantIDs, err = i.pim.GetVariantIDs(ctx, nil)
		return err
	}); err != nil {
		return err
	}

	for n, batch := range utils.Batch(variantIDs, i.options.batchSize()) {
		var variants []models.VariantModel
		if err := i.read(ctx, "variants", func() (err error) {
			variants, err = i.pim.GetVariants(ctx, batch)
			return err
		}); err != nil {
			return err
		}
		if len(variants) == 0 {
			continue
		}

		i.logger.InfoWithContext(ctx, "Импорт пачки вариантов",
			interfaces.LogField{Key: "batch", Value: n + 1},
			interfaces.LogField{Key: "size", Value: len(variants)},
		)
		var created []models.VariantModel
		if err := i.step(ctx, "variants", func(ctx context.Context) {
			created = i.products.CreateVariants(ctx, variants)
		}, func(ctx context.Context) {
			i.products.DeleteVariants(ctx, created)
		}); err != nil {
			return err
		}
	}
	return nil
}

// RunClean удаляет из Commercetools все сущности Struct в порядке:
// варианты, товары, типы товаров, категории, каталоги.
// Возвращает накопленные ошибки удаления.
func (i *Importer) RunClean(ctx context.Context) ([]string, error) {
	if !i.options.AllowCleanCommerce {
		return nil, ErrCleanNotAllowed
	}

	ctx, run := i.startRun(ctx, RunKindClean)
	i.errors.Clear()

	categoryIDs, err := i.pim.GetCategoryIDs(ctx)
	if err != nil {
		return nil, i.abortClean(ctx, run, fmt.Errorf("failed to get category ids: %w", err))
	}
	catalogues, err := i.pim.GetCatalogues(ctx)
	if err != nil {
		return nil, i.abortClean(ctx, run, fmt.Errorf("failed to get catalogues: %w", err))
	}
	structures, err := i.pim.GetProductStructures(ctx)
	if err != nil {
		return nil, i.abortClean(ctx, run, fmt.Errorf("failed to get product structures: %w", err))
	}
	productIDs, err := i.pim.GetProductIDs(ctx)
	if err != nil {
		return nil, i.abortClean(ctx, run, fmt.Errorf("failed to get product ids: %w", err))
	}
	variantIDs, err := i.pim.GetVariantIDs(ctx, nil)
	if err != nil {
		return nil, i.abortClean(ctx, run, fmt.Errorf("failed to get variant ids: %w", err))
	}

	// план выполняется с конца: первыми удаляются варианты
	i.imports.AddRollBackStep(func(ctx context.Context) { i.categories.DeleteCatalogues(ctx, catalogueUIDs(catalogues)) })
	i.imports.AddRollBackStep(func(ctx context.Context) { i.categories.DeleteCategories(ctx, categoryIDs) })
	i.imports.AddRollBackStep(func(ctx context.Context) { i.productTypes.DeleteMany(ctx, structures) })
	i.imports.AddRollBackStep(func(ctx context.Context) { i.products.DeleteProducts(ctx, productIDs) })
	i.imports.AddRollBackStep(func(ctx context.Context) { i.products.DeleteVariantsByID(ctx, variantIDs) })

	i.imports.CleanUp(ctx)

	errs := i.errors.Errors()
	i.finishRun(ctx, run, errs)
	return errs, nil
}

// step выполняет шаг импорта через координатор и замеряет длительность
func (i *Importer) step(ctx context.Context, name string, action, rollback Step) error {
	start := time.Now()
	defer func() {
		metrics.ImportStepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	i.logger.InfoWithContext(ctx, "Шаг импорта", interfaces.LogField{Key: "step", Value: name})
	return i.imports.Execute(ctx, action, rollback)
}

// read выполняет чтение из Struct. Ошибка чтения проходит через координатор
// как ошибка шага, поэтому запускает откат так же, как ошибка записи.
func (i *Importer) read(ctx context.Context, what string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	return i.imports.Execute(ctx, func(ctx context.Context) {
		fail(ctx, i.logger, i.errors, fmt.Sprintf("Failed to read the %s from Struct PIM.", what), err.Error())
	}, nil)
}

func (i *Importer) startRun(ctx context.Context, kind string) (context.Context, *interfaces.ImportRun) {
	run := &interfaces.ImportRun{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
	ctx = context.WithValue(ctx, interfaces.RunIDKey, run.ID)
	i.logger.InfoWithContext(ctx, "Запуск импорта", interfaces.LogField{Key: "kind", Value: kind})

	if i.runs != nil {
		if err := i.runs.SaveRun(ctx, run); err != nil {
			i.logger.WarnWithContext(ctx, "Не удалось сохранить запуск в журнал", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	return ctx, run
}

func (i *Importer) finishRun(ctx context.Context, run *interfaces.ImportRun, errs []string) {
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Succeeded = len(errs) == 0
	run.Errors = errs

	status := "success"
	if !run.Succeeded {
		status = "failed"
	}
	metrics.ImportRuns.WithLabelValues(run.Kind, status).Inc()
	i.logger.InfoWithContext(ctx, "Запуск завершен",
		interfaces.LogField{Key: "kind", Value: run.Kind},
		interfaces.LogField{Key: "status", Value: status},
		interfaces.LogField{Key: "errors", Value: len(errs)},
		interfaces.LogField{Key: "duration", Value: finished.Sub(run.StartedAt).String()},
	)

	if i.runs != nil {
		if err := i.runs.SaveRun(ctx, run); err != nil {
			i.logger.WarnWithContext(ctx, "Не удалось сохранить запуск в журнал", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
}

func (i *Importer) abortClean(ctx context.Context, run *interfaces.ImportRun, err error) error {
	i.finishRun(ctx, run, []string{err.Error()})
	return err
}

func catalogueUIDs(catalogues []models.CatalogueModel) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(catalogues))
	for _, c := range catalogues {
		out = append(out, c.Uid)
	}
	return out
}
