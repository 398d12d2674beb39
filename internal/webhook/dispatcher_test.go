package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/messaging"
	"github.com/athebyme/struct-commerce-sync/internal/domain/keys"
	"github.com/athebyme/struct-commerce-sync/internal/domain/services"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCommerce реализует только вызовы, нужные сценариям вебхуков
type stubCommerce struct {
	interfaces.CommercePort

	mu       sync.Mutex
	created  []string
	fail     map[string]string
	project  *models.Project
	projects []models.Update
}

func (s *stubCommerce) CreateCategory(_ context.Context, draft models.CategoryDraft) interfaces.Result[*models.Category] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, draft.Key)
	if msg, ok := s.fail[draft.Key]; ok {
		return interfaces.RemoteError[*models.Category](msg)
	}
	return interfaces.OK(&models.Category{Key: draft.Key, Version: 1})
}

func (s *stubCommerce) GetProject(context.Context) interfaces.Result[*models.Project] {
	return interfaces.OK(s.project)
}

func (s *stubCommerce) UpdateProject(_ context.Context, update models.Update) interfaces.Result[*models.Project] {
	s.projects = append(s.projects, update)
	return interfaces.OK(s.project)
}

type stubPIM struct {
	interfaces.PIMPort

	categories map[int]models.CategoryModel
	languages  []models.LanguageModel
	fetched    int
	// languageReads число чтений языков
	languageReads int
}

func (s *stubPIM) GetCategories(_ context.Context, ids []int) ([]models.CategoryModel, error) {
	s.fetched++
	var out []models.CategoryModel
	for _, id := range ids {
		if c, ok := s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubPIM) GetLanguages(context.Context) ([]models.LanguageModel, error) {
	s.languageReads++
	return s.languages, nil
}

type stubInvalidator struct {
	attributes int
	structures []uuid.UUID
	err        error
}

func (s *stubInvalidator) InvalidateAttributes(context.Context) error {
	s.attributes++
	return s.err
}

func (s *stubInvalidator) InvalidateProductStructure(_ context.Context, uid uuid.UUID) error {
	s.structures = append(s.structures, uid)
	return s.err
}

type stubPublisher struct {
	interfaces.MessagingPort
	events []messaging.SyncEvent
	topics []string
}

func (s *stubPublisher) PublishWithHeaders(_ context.Context, topic, key string, message []byte, headers map[string]string) error {
	var event messaging.SyncEvent
	if err := json.Unmarshal(message, &event); err != nil {
		return err
	}
	if headers[messaging.HeaderEventKey] != key {
		return errors.New("event key header mismatch")
	}
	s.events = append(s.events, event)
	s.topics = append(s.topics, topic)
	return nil
}

type dispatcherFixture struct {
	commerce    *stubCommerce
	pim         *stubPIM
	invalidator *stubInvalidator
	publisher   *stubPublisher
	dispatcher  *Dispatcher
}

func newDispatcherFixture() *dispatcherFixture {
	catalogue := uuid.New()
	parent := 1
	f := &dispatcherFixture{
		commerce: &stubCommerce{
			fail:    map[string]string{},
			project: &models.Project{Key: "demo", Version: 3, Languages: []string{"en"}},
		},
		pim: &stubPIM{
			categories: map[int]models.CategoryModel{
				1: {Id: 1, CatalogueUid: catalogue, Name: map[string]string{"en-GB": "Shoes"}},
				2: {Id: 2, ParentId: &parent, CatalogueUid: catalogue, Name: map[string]string{"en-GB": "Boots"}},
			},
			languages: []models.LanguageModel{{CultureCode: "en-GB"}, {CultureCode: "da-DK"}},
		},
		invalidator: &stubInvalidator{},
		publisher:   &stubPublisher{},
	}

	log := logger.NewNopLogger()
	factory := services.NewFactory(f.commerce, f.pim, log, services.Options{})
	f.dispatcher = NewDispatcher(factory, f.pim, log).
		WithInvalidator(f.invalidator).
		WithEvents(f.publisher, "pim-sync-events")
	return f
}

func categoryBody(ids ...int) []byte {
	body, _ := json.Marshal(models.CategoryWebhookModel{CategoryIds: ids})
	return body
}

func TestDispatch_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		message string
	}{
		{
			name:    "нет ключа события",
			event:   Event{Family: FamilyCategories, Body: categoryBody(1)},
			message: "X-Event-Key is missing",
		},
		{
			name:    "пустое тело",
			event:   Event{Family: FamilyCategories, Key: "categories:created"},
			message: "No model provided",
		},
		{
			name:    "тело null",
			event:   Event{Family: FamilyCategories, Key: "categories:created", Body: []byte(" null ")},
			message: "No model provided",
		},
		{
			name:    "неизвестное действие",
			event:   Event{Family: FamilyCategories, Key: "categories:bogus", Body: categoryBody(1)},
			message: "No handler for webhook categories:bogus",
		},
		{
			name:    "ключ другого семейства",
			event:   Event{Family: FamilyCategories, Key: "products:created", Body: categoryBody(1)},
			message: "No handler for webhook products:created",
		},
		{
			name:    "удаление языка",
			event:   Event{Family: FamilyLanguages, Key: "languages:deleted"},
			message: "Deleting language in Commercetools not supported",
		},
		{
			name:    "нет id категорий",
			event:   Event{Family: FamilyCategories, Key: "categories:created", Body: []byte(`{"CategoryIds":[]}`)},
			message: "No category ids provided",
		},
		{
			name:    "категории не найдены",
			event:   Event{Family: FamilyCategories, Key: "categories:created", Body: categoryBody(7, 8)},
			message: "No matching Struct categories found for [7 8]",
		},
		{
			name:    "нет uid каталога",
			event:   Event{Family: FamilyCatalogues, Key: "catalogues:created", Body: []byte(`{"CatalogueAlias":"Master"}`)},
			message: "No CatalogueUid provided",
		},
		{
			name:    "нет uid структуры",
			event:   Event{Family: FamilyProductStructures, Key: "productstructures:updated", Body: []byte(`{}`)},
			message: "No ProductStructureUid provided",
		},
		{
			name:    "нет id товаров",
			event:   Event{Family: FamilyProducts, Key: "products:deleted", Body: []byte(`{"ProductIds":null}`)},
			message: "No product ids provided",
		},
		{
			name:    "нет id вариантов",
			event:   Event{Family: FamilyVariants, Key: "variants:updated", Body: []byte(`{}`)},
			message: "No variant ids provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcherFixture()

			result := f.dispatcher.Dispatch(context.Background(), tt.event)

			assert.Equal(t, http.StatusBadRequest, result.Status)
			assert.Equal(t, tt.message, result.Message)
			assert.Empty(t, result.Errors)
			assert.Empty(t, f.commerce.created)
		})
	}
}

func TestDispatch_UnknownActionDoesNotFetch(t *testing.T) {
	f := newDispatcherFixture()

	f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyCategories, Key: "categories:bogus", Body: categoryBody(1)})

	assert.Zero(t, f.pim.fetched)
}

func TestDispatch_CategoriesCreated(t *testing.T) {
	f := newDispatcherFixture()

	result := f.dispatcher.Dispatch(context.Background(), Event{
		Family: FamilyCategories,
		Key:    "categories:created",
		Body:   categoryBody(2, 1),
		Source: "http",
	})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Empty(t, result.Message)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"struct_1", "struct_2"}, f.commerce.created)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "pim-sync-events", f.publisher.topics[0])
	assert.Equal(t, messaging.StatusSucceeded, f.publisher.events[0].Status)
	assert.Equal(t, "categories:created", f.publisher.events[0].EventKey)
	assert.Equal(t, "http", f.publisher.events[0].Source)
}

func TestDispatch_CatalogueCreated(t *testing.T) {
	f := newDispatcherFixture()
	uid := uuid.New()
	body := []byte(`{"CatalogueUid":"` + uid.String() + `","CatalogueAlias":"Master"}`)

	result := f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyCatalogues, Key: "catalogues:created", Body: body})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, []string{keys.FromUID(uid)}, f.commerce.created)
}

func TestDispatch_FamilyFromKey(t *testing.T) {
	f := newDispatcherFixture()

	result := f.dispatcher.Dispatch(context.Background(), Event{Key: "categories:created", Body: categoryBody(1), Source: "kafka"})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, []string{"struct_1"}, f.commerce.created)
}

func TestDispatch_AccumulatedErrors(t *testing.T) {
	f := newDispatcherFixture()
	f.commerce.fail["struct_1"] = "duplicate"

	result := f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyCategories, Key: "categories:created", Body: categoryBody(1, 2)})

	assert.Equal(t, http.StatusBadRequest, result.Status)
	assert.Empty(t, result.Message)
	assert.Equal(t, []string{"Failed to create the category struct_1 in Commercetools."}, result.Errors)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, messaging.StatusFailed, f.publisher.events[0].Status)
	assert.Equal(t, result.Errors, f.publisher.events[0].Errors)
}

func TestDispatch_Languages(t *testing.T) {
	t.Run("языки добавляются в проект", func(t *testing.T) {
		f := newDispatcherFixture()

		result := f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyLanguages, Key: "languages:updated"})

		assert.Equal(t, http.StatusOK, result.Status)
		require.Len(t, f.commerce.projects, 1)
		action := f.commerce.projects[0].Actions[0].(models.ProjectChangeLanguages)
		assert.Equal(t, []string{"en", "da"}, action.Languages)
		assert.Equal(t, 1, f.pim.languageReads)
	})

	t.Run("в Struct нет языков", func(t *testing.T) {
		f := newDispatcherFixture()
		f.pim.languages = nil

		result := f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyLanguages, Key: "languages:created"})

		assert.Equal(t, "No languages defined in Struct PIM", result.Message)
		assert.Empty(t, f.commerce.projects)
	})
}

func TestDispatch_Attributes(t *testing.T) {
	f := newDispatcherFixture()
	body := []byte(`{"AttributeUids":["` + uuid.NewString() + `"]}`)

	result := f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyAttributes, Key: "attributes:updated", Body: body})

	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, 1, f.invalidator.attributes)

	f.invalidator.err = errors.New("redis down")
	result = f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyAttributes, Key: "attributes:deleted", Body: body})
	assert.Equal(t, []string{"Failed to invalidate the cached Struct PIM attributes."}, result.Errors)
}

func TestDispatch_RejectedEventPublished(t *testing.T) {
	f := newDispatcherFixture()

	f.dispatcher.Dispatch(context.Background(), Event{Family: FamilyLanguages, Key: "languages:deleted"})

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, messaging.StatusRejected, f.publisher.events[0].Status)
	assert.Equal(t, []string{"Deleting language in Commercetools not supported"}, f.publisher.events[0].Errors)
}
