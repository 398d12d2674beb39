package services

import (
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
)

// Scope набор сервисов одного вебхука или запуска импорта с общим накопителем ошибок.
// Scope не переиспользуется между запросами.
type Scope struct {
	Errors       *ErrorService
	Categories   *CategoryService
	ProductTypes *ProductTypeService
	Products     *ProductVariantService
	Settings     *ProjectSettingsService
	Imports      *ImportService
	Importer     *Importer
}

// Factory создает Scope для каждого запроса
type Factory struct {
	commerce interfaces.CommercePort
	pim      interfaces.PIMPort
	runs     interfaces.StoragePort
	logger   interfaces.LoggerPort
	options  Options
}

// NewFactory создает фабрику сервисов синхронизации
func NewFactory(commerce interfaces.CommercePort, pim interfaces.PIMPort, logger interfaces.LoggerPort, opts Options) *Factory {
	return &Factory{
		commerce: commerce,
		pim:      pim,
		logger:   logger,
		options:  opts,
	}
}

// WithRunStore включает журнал запусков импорта
func (f *Factory) WithRunStore(runs interfaces.StoragePort) *Factory {
	f.runs = runs
	return f
}

// Options возвращает настройки синхронизации
func (f *Factory) Options() Options {
	return f.options
}

// NewScope создает новый набор сервисов с пустым накопителем и пустым планом отката
func (f *Factory) NewScope() *Scope {
	errs := NewErrorService()
	categories := NewCategoryService(f.commerce, errs, f.logger, f.options)
	productTypes := NewProductTypeService(f.commerce, f.pim, errs, f.logger, f.options)
	products := NewProductVariantService(f.commerce, f.pim, productTypes, errs, f.logger, f.options)
	settings := NewProjectSettingsService(f.commerce, f.pim, errs, f.logger)
	imports := NewImportService(errs, f.logger, f.options.RollBackOnFailure)

	return &Scope{
		Errors:       errs,
		Categories:   categories,
		ProductTypes: productTypes,
		Products:     products,
		Settings:     settings,
		Imports:      imports,
		Importer: &Importer{
			pim:          f.pim,
			categories:   categories,
			productTypes: productTypes,
			products:     products,
			settings:     settings,
			imports:      imports,
			errors:       errs,
			runs:         f.runs,
			options:      f.options,
			logger:       f.logger.WithField("component", "importer"),
		},
	}
}
