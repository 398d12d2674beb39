package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
)

// fakeCommerce хранит ресурсы в памяти и записывает порядок вызовов
type fakeCommerce struct {
	mu sync.Mutex

	calls         []string
	categories    map[string]*models.Category
	productTypes  map[string]*models.ProductType
	products      map[string]*models.Product
	customObjects map[string]*models.CustomObject
	project       *models.Project
	updates       map[string][]models.Update

	// fail ключ вида "createCategory:struct_1" -> сообщение удаленной стороны
	fail   map[string]string
	nextID int
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		categories:    map[string]*models.Category{},
		productTypes:  map[string]*models.ProductType{},
		products:      map[string]*models.Product{},
		customObjects: map[string]*models.CustomObject{},
		project:       &models.Project{Key: "test-project", Version: 1},
		updates:       map[string][]models.Update{},
		fail:          map[string]string{},
	}
}

func (f *fakeCommerce) record(call string) (string, bool) {
	f.calls = append(f.calls, call)
	msg, failed := f.fail[call]
	return msg, failed
}

func (f *fakeCommerce) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeCommerce) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeCommerce) callsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeCommerce) GetCategoryByKey(_ context.Context, key string) interfaces.Result[*models.Category] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("getCategory:" + key); failed {
		return interfaces.RemoteError[*models.Category](msg)
	}
	c, ok := f.categories[key]
	if !ok {
		return interfaces.NotFound[*models.Category]()
	}
	cp := *c
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) GetCategoryByID(_ context.Context, id string) interfaces.Result[*models.Category] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("getCategoryByID:" + id)
	for _, c := range f.categories {
		if c.ID == id {
			cp := *c
			return interfaces.OK(&cp)
		}
	}
	return interfaces.NotFound[*models.Category]()
}

func (f *fakeCommerce) CreateCategory(_ context.Context, draft models.CategoryDraft) interfaces.Result[*models.Category] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("createCategory:" + draft.Key); failed {
		return interfaces.RemoteError[*models.Category](msg)
	}
	c := &models.Category{ID: f.id(), Key: draft.Key, Version: 1, Name: draft.Name, Slug: draft.Slug}
	if draft.Parent != nil {
		parent, ok := f.categories[draft.Parent.Key]
		if !ok {
			return interfaces.RemoteError[*models.Category]("parent " + draft.Parent.Key + " does not exist")
		}
		c.Parent = &models.CategoryReference{ID: parent.ID, TypeID: models.TypeCategory}
	}
	f.categories[draft.Key] = c
	cp := *c
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) UpdateCategory(_ context.Context, key string, update models.Update) interfaces.Result[*models.Category] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("updateCategory:" + key); failed {
		return interfaces.RemoteError[*models.Category](msg)
	}
	c, ok := f.categories[key]
	if !ok {
		return interfaces.NotFound[*models.Category]()
	}
	f.updates[key] = append(f.updates[key], update)
	c.Version++
	cp := *c
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) DeleteCategory(_ context.Context, key string, version int64) interfaces.Result[*models.Category] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("deleteCategory:" + key); failed {
		return interfaces.RemoteError[*models.Category](msg)
	}
	c, ok := f.categories[key]
	if !ok {
		return interfaces.NotFound[*models.Category]()
	}
	if c.Version != version {
		return interfaces.RemoteError[*models.Category]("version mismatch")
	}
	delete(f.categories, key)
	return interfaces.OK(c)
}

func (f *fakeCommerce) GetProductTypeByKey(_ context.Context, key string) interfaces.Result[*models.ProductType] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("getProductType:" + key)
	pt, ok := f.productTypes[key]
	if !ok {
		return interfaces.NotFound[*models.ProductType]()
	}
	cp := *pt
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) CreateProductType(_ context.Context, draft models.ProductTypeDraft) interfaces.Result[*models.ProductType] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("createProductType:" + draft.Key); failed {
		return interfaces.RemoteError[*models.ProductType](msg)
	}
	pt := &models.ProductType{
		ID: f.id(), Key: draft.Key, Version: 1,
		Name: draft.Name, Description: draft.Description, Attributes: draft.Attributes,
	}
	f.productTypes[draft.Key] = pt
	cp := *pt
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) UpdateProductType(_ context.Context, key string, update models.Update) interfaces.Result[*models.ProductType] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("updateProductType:" + key); failed {
		return interfaces.RemoteError[*models.ProductType](msg)
	}
	pt, ok := f.productTypes[key]
	if !ok {
		return interfaces.NotFound[*models.ProductType]()
	}
	f.updates[key] = append(f.updates[key], update)
	pt.Version++
	cp := *pt
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) DeleteProductType(_ context.Context, key string, _ int64) interfaces.Result[*models.ProductType] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("deleteProductType:" + key); failed {
		return interfaces.RemoteError[*models.ProductType](msg)
	}
	pt, ok := f.productTypes[key]
	if !ok {
		return interfaces.NotFound[*models.ProductType]()
	}
	delete(f.productTypes, key)
	return interfaces.OK(pt)
}

func (f *fakeCommerce) GetProductByKey(_ context.Context, key string, _ ...string) interfaces.Result[*models.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("getProduct:" + key); failed {
		return interfaces.RemoteError[*models.Product](msg)
	}
	p, ok := f.products[key]
	if !ok {
		return interfaces.NotFound[*models.Product]()
	}
	return interfaces.OK(f.snapshot(p))
}

func (f *fakeCommerce) CreateProduct(_ context.Context, draft models.ProductDraft) interfaces.Result[*models.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("createProduct:" + draft.Key); failed {
		return interfaces.RemoteError[*models.Product](msg)
	}
	pt := f.productTypes[draft.ProductType.Key]
	p := &models.Product{ID: f.id(), Key: draft.Key, Version: 1}
	if pt != nil {
		p.ProductType = models.ProductTypeReference{ID: pt.ID, TypeID: models.TypeProductType, Obj: pt}
	}
	p.MasterData.Published = draft.Publish
	p.MasterData.Current.Name = draft.Name
	for _, ref := range draft.Categories {
		if c, ok := f.categories[ref.Key]; ok {
			p.MasterData.Current.Categories = append(p.MasterData.Current.Categories,
				models.CategoryReference{ID: c.ID, TypeID: models.TypeCategory, Obj: c})
		}
	}
	f.products[draft.Key] = p
	return interfaces.OK(f.snapshot(p))
}

func (f *fakeCommerce) UpdateProduct(_ context.Context, key string, update models.Update) interfaces.Result[*models.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("updateProduct:" + key); failed {
		return interfaces.RemoteError[*models.Product](msg)
	}
	p, ok := f.products[key]
	if !ok {
		return interfaces.NotFound[*models.Product]()
	}
	if p.Version != update.Version {
		return interfaces.RemoteError[*models.Product]("version mismatch")
	}
	for _, action := range update.Actions {
		switch a := action.(type) {
		case models.ProductUnpublish:
			p.MasterData.Published = false
		case models.ProductAddVariant:
			p.MasterData.Current.Variants = append(p.MasterData.Current.Variants,
				models.ProductVariant{ID: len(p.MasterData.Current.Variants) + 2, Key: a.Key, Sku: a.Sku, Attributes: a.Attributes})
		case models.ProductRemoveVariant:
			kept := p.MasterData.Current.Variants[:0]
			for _, v := range p.MasterData.Current.Variants {
				if v.Sku != a.Sku {
					kept = append(kept, v)
				}
			}
			p.MasterData.Current.Variants = kept
		case models.ProductSetAttributeInAllVariants:
			p.MasterData.Current.MasterVariant.Attributes = append(p.MasterData.Current.MasterVariant.Attributes,
				models.ProductAttribute{Name: a.Name, Value: a.Value})
		}
	}
	f.updates[key] = append(f.updates[key], update)
	p.Version++
	return interfaces.OK(f.snapshot(p))
}

func (f *fakeCommerce) DeleteProduct(_ context.Context, key string, version int64) interfaces.Result[*models.Product] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record(fmt.Sprintf("deleteProduct:%s@%d", key, version)); failed {
		return interfaces.RemoteError[*models.Product](msg)
	}
	p, ok := f.products[key]
	if !ok {
		return interfaces.NotFound[*models.Product]()
	}
	if p.Version != version {
		return interfaces.RemoteError[*models.Product]("version mismatch")
	}
	delete(f.products, key)
	return interfaces.OK(p)
}

func (f *fakeCommerce) GetProject(context.Context) interfaces.Result[*models.Project] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("getProject"); failed {
		return interfaces.RemoteError[*models.Project](msg)
	}
	cp := *f.project
	cp.Languages = append([]string{}, f.project.Languages...)
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) UpdateProject(_ context.Context, update models.Update) interfaces.Result[*models.Project] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, failed := f.record("updateProject"); failed {
		return interfaces.RemoteError[*models.Project](msg)
	}
	for _, action := range update.Actions {
		if a, ok := action.(models.ProjectChangeLanguages); ok {
			f.project.Languages = a.Languages
		}
	}
	f.updates["project"] = append(f.updates["project"], update)
	f.project.Version++
	cp := *f.project
	return interfaces.OK(&cp)
}

func (f *fakeCommerce) GetCustomObject(_ context.Context, container, key string) interfaces.Result[*models.CustomObject] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("getCustomObject:" + container + "/" + key)
	obj, ok := f.customObjects[container+"/"+key]
	if !ok {
		return interfaces.NotFound[*models.CustomObject]()
	}
	return interfaces.OK(obj)
}

func (f *fakeCommerce) UpsertCustomObject(_ context.Context, draft models.CustomObjectDraft) interfaces.Result[*models.CustomObject] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("upsertCustomObject:" + draft.Container + "/" + draft.Key)
	obj, ok := f.customObjects[draft.Container+"/"+draft.Key]
	if !ok {
		obj = &models.CustomObject{ID: f.id(), Container: draft.Container, Key: draft.Key}
		f.customObjects[draft.Container+"/"+draft.Key] = obj
	}
	obj.Value = draft.Value
	obj.Version++
	return interfaces.OK(obj)
}

func (f *fakeCommerce) snapshot(p *models.Product) *models.Product {
	cp := *p
	cp.MasterData.Current.Variants = append([]models.ProductVariant{}, p.MasterData.Current.Variants...)
	cp.MasterData.Current.Categories = append([]models.CategoryReference{}, p.MasterData.Current.Categories...)
	return &cp
}

// fakePIM отдает заранее заданные модели Struct
type fakePIM struct {
	catalogues      []models.CatalogueModel
	categories      map[int]models.CategoryModel
	products        map[int]models.ProductModel
	classifications map[int][]models.ProductClassificationModel
	productValues   map[int]*models.AttributeValuesModel
	variants        map[int]models.VariantModel
	variantValues   map[int]*models.AttributeValuesModel
	structures      map[uuid.UUID]models.ProductStructure
	languages       []models.LanguageModel
	attributes      []models.Attribute

	// errs имя метода -> ошибка
	errs map[string]error
}

func newFakePIM() *fakePIM {
	return &fakePIM{
		categories:      map[int]models.CategoryModel{},
		products:        map[int]models.ProductModel{},
		classifications: map[int][]models.ProductClassificationModel{},
		productValues:   map[int]*models.AttributeValuesModel{},
		variants:        map[int]models.VariantModel{},
		variantValues:   map[int]*models.AttributeValuesModel{},
		structures:      map[uuid.UUID]models.ProductStructure{},
		errs:            map[string]error{},
	}
}

func (p *fakePIM) GetCatalogues(context.Context) ([]models.CatalogueModel, error) {
	return p.catalogues, p.errs["GetCatalogues"]
}

func (p *fakePIM) GetCategoryIDs(context.Context) ([]int, error) {
	ids := make([]int, 0, len(p.categories))
	for id := range p.categories {
		ids = append(ids, id)
	}
	return ids, p.errs["GetCategoryIDs"]
}

func (p *fakePIM) GetCategories(_ context.Context, ids []int) ([]models.CategoryModel, error) {
	var out []models.CategoryModel
	for _, id := range ids {
		if c, ok := p.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, p.errs["GetCategories"]
}

func (p *fakePIM) GetCategory(_ context.Context, id int) (*models.CategoryModel, error) {
	c, ok := p.categories[id]
	if !ok {
		return nil, p.errs["GetCategory"]
	}
	return &c, p.errs["GetCategory"]
}

func (p *fakePIM) GetProductIDs(context.Context) ([]int, error) {
	ids := make([]int, 0, len(p.products))
	for id := range p.products {
		ids = append(ids, id)
	}
	return ids, p.errs["GetProductIDs"]
}

func (p *fakePIM) GetProducts(_ context.Context, ids []int) ([]models.ProductModel, error) {
	var out []models.ProductModel
	for _, id := range ids {
		if m, ok := p.products[id]; ok {
			out = append(out, m)
		}
	}
	return out, p.errs["GetProducts"]
}

func (p *fakePIM) ListProducts(_ context.Context, limit int) ([]models.ProductModel, error) {
	var out []models.ProductModel
	for _, m := range p.products {
		if len(out) == limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (p *fakePIM) GetProductClassifications(_ context.Context, id int) ([]models.ProductClassificationModel, error) {
	return p.classifications[id], p.errs["GetProductClassifications"]
}

func (p *fakePIM) GetProductAttributeValues(_ context.Context, id int) (*models.AttributeValuesModel, error) {
	return p.productValues[id], nil
}

func (p *fakePIM) GetVariantIDs(_ context.Context, productID *int) ([]int, error) {
	var ids []int
	for id, v := range p.variants {
		if productID == nil || v.ProductId == *productID {
			ids = append(ids, id)
		}
	}
	return ids, p.errs["GetVariantIDs"]
}

func (p *fakePIM) GetVariants(_ context.Context, ids []int) ([]models.VariantModel, error) {
	var out []models.VariantModel
	for _, id := range ids {
		if v, ok := p.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, p.errs["GetVariants"]
}

func (p *fakePIM) GetVariantAttributeValues(_ context.Context, id int) (*models.AttributeValuesModel, error) {
	return p.variantValues[id], nil
}

func (p *fakePIM) GetProductStructures(context.Context) ([]models.ProductStructure, error) {
	out := make([]models.ProductStructure, 0, len(p.structures))
	for _, s := range p.structures {
		out = append(out, s)
	}
	return out, p.errs["GetProductStructures"]
}

func (p *fakePIM) GetProductStructure(_ context.Context, uid uuid.UUID) (*models.ProductStructure, error) {
	s, ok := p.structures[uid]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (p *fakePIM) GetLanguages(context.Context) ([]models.LanguageModel, error) {
	return p.languages, p.errs["GetLanguages"]
}

func (p *fakePIM) GetAttributes(_ context.Context, uids []uuid.UUID) ([]models.Attribute, error) {
	if err := p.errs["GetAttributes"]; err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return p.attributes, nil
	}
	wanted := make(map[uuid.UUID]struct{}, len(uids))
	for _, uid := range uids {
		wanted[uid] = struct{}{}
	}
	var out []models.Attribute
	for _, a := range p.attributes {
		if _, ok := wanted[a.Uid]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeRuns журнал запусков в памяти
type fakeRuns struct {
	mu    sync.Mutex
	saved []interfaces.ImportRun
}

func (r *fakeRuns) SaveRun(_ context.Context, run *interfaces.ImportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *run)
	return nil
}

func (r *fakeRuns) ListRuns(context.Context, int) ([]*interfaces.ImportRun, error) { return nil, nil }
func (r *fakeRuns) Ping(context.Context) error                                     { return nil }
func (r *fakeRuns) Close() error                                                   { return nil }

func newTestScope(commerce *fakeCommerce, pim *fakePIM, opts Options) *Scope {
	return NewFactory(commerce, pim, logger.NewNopLogger(), opts).NewScope()
}

func rawValues(values map[string]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		out[k] = json.RawMessage(v)
	}
	return out
}
