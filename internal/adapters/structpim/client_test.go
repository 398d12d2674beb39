package structpim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/adapters/cache"
	"github.com/athebyme/struct-commerce-sync/internal/adapters/logger"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "pim-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/", "pim-key", time.Second, logger.NewNopLogger())
	require.NoError(t, err)
	return client
}

func TestClient_GetCategoriesBatches(t *testing.T) {
	var batches [][]int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/categories/batch", r.URL.Path)

		var body models.CategoryWebhookModel
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batches = append(batches, body.CategoryIds)

		out := make([]models.CategoryModel, 0, len(body.CategoryIds))
		for _, id := range body.CategoryIds {
			out = append(out, models.CategoryModel{Id: id})
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	ids := make([]int, 2500)
	for i := range ids {
		ids[i] = i + 1
	}

	categories, err := client.GetCategories(context.Background(), ids)

	require.NoError(t, err)
	assert.Len(t, categories, 2500)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], MaxBatchSize)
	assert.Len(t, batches[2], 500)
	assert.Equal(t, 2500, categories[2499].Id)
}

func TestClient_NotFoundIsAbsence(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	category, err := client.GetCategory(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, category)

	structure, err := client.GetProductStructure(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, structure)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})

	_, err := client.GetLanguages(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500: boom")
}

func TestClient_VariantIDsOfProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/10/variants/ids":
			_, _ = w.Write([]byte(`[100,101]`))
		case "/variants/ids":
			_, _ = w.Write([]byte(`[100,101,200]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	productID := 10
	ids, err := client.GetVariantIDs(context.Background(), &productID)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 101}, ids)

	ids, err = client.GetVariantIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 101, 200}, ids)
}

func TestClient_AttributeValuesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/10/attributevalues", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("globalListValueReferencesOnly"))
		_, _ = w.Write([]byte(`{"Id":10,"Values":{"Weight":12}}`))
	})

	values, err := client.GetProductAttributeValues(context.Background(), 10)

	require.NoError(t, err)
	require.NotNil(t, values)
	assert.JSONEq(t, `12`, string(values.Values["Weight"]))
}

func TestCachedClient_Attributes(t *testing.T) {
	weight := uuid.New()
	color := uuid.New()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/attributes", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"Uid":"` + weight.String() + `","Alias":"Weight","AttributeType":"NumberAttribute"},
			{"Uid":"` + color.String() + `","Alias":"color","AttributeType":"TextAttribute","Localized":true},
			{"Uid":"` + uuid.NewString() + `","Alias":"odd","AttributeType":"SomethingNew"}
		]`))
	})

	ctx := context.Background()
	cached := NewCachedClient(client, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, logger.NewNopLogger())

	all, err := cached.GetAttributes(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := cached.GetAttributes(ctx, []uuid.UUID{color})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, models.TextKind{Localized: true}, some[0].Kind)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, cached.InvalidateAttributes(ctx))
	_, err = cached.GetAttributes(ctx, []uuid.UUID{weight})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedClient_ProductStructure(t *testing.T) {
	uid := uuid.New()
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/productstructures/"+uid.String() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"Uid":"` + uid.String() + `","Alias":"shoes","Label":"Shoes"}`))
	})

	ctx := context.Background()
	cached := NewCachedClient(client, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, logger.NewNopLogger())

	for i := 0; i < 3; i++ {
		structure, err := cached.GetProductStructure(ctx, uid)
		require.NoError(t, err)
		assert.Equal(t, "shoes", structure.Alias)
	}
	assert.Equal(t, int32(1), calls.Load())

	missing, err := cached.GetProductStructure(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, cached.InvalidateProductStructure(ctx, uid))
	_, err = cached.GetProductStructure(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
