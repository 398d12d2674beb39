package structpim

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/athebyme/struct-commerce-sync/internal/metrics"
	"github.com/athebyme/struct-commerce-sync/pkg/interfaces"
	"github.com/athebyme/struct-commerce-sync/pkg/models"
	"github.com/athebyme/struct-commerce-sync/pkg/utils"
	"github.com/google/uuid"
)

// MaxBatchSize наибольшее число id в одном пакетном запросе Struct PIM
const MaxBatchSize = 1000

// Client реализация PIMPort поверх HTTP API Struct PIM
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     interfaces.LoggerPort
}

// NewClient создает клиента Struct PIM, ключ передается в заголовке Authorization
func NewClient(baseURL, apiKey string, timeout time.Duration, logger interfaces.LoggerPort) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("struct pim base url is required")
	}
	if apiKey == "" {
		return nil, errors.New("struct pim api key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

var _ interfaces.PIMPort = (*Client)(nil)

// doRequest выполняет запрос и декодирует ответ.
// Возвращает found=false при 404, тело в этом случае не читается.
func (c *Client) doRequest(ctx context.Context, method, endpoint, metricName string, requestBody, response interface{}) (found bool, err error) {
	status := "error"
	defer func() {
		metrics.PIMRequests.WithLabelValues(metricName, status).Inc()
	}()

	var payload io.Reader
	if requestBody != nil {
		bodyBytes, err := json.Marshal(requestBody)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, payload)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("request was cancelled: %w", ctx.Err())
		default:
			return false, fmt.Errorf("failed to execute request: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		status = "not_found"
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("struct pim %s %s responded with status %d: %s",
			method, endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	status = "ok"
	return true, nil
}

// batched собирает результат пакетных запросов по MaxBatchSize id
func batched[T any](ctx context.Context, c *Client, endpoint, metricName string, ids []int, body func([]int) interface{}) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, chunk := range utils.Batch(ids, MaxBatchSize) {
		var page []T
		if _, err := c.doRequest(ctx, http.MethodPost, endpoint, metricName, body(chunk), &page); err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

func (c *Client) GetCatalogues(ctx context.Context) ([]models.CatalogueModel, error) {
	var out []models.CatalogueModel
	if _, err := c.doRequest(ctx, http.MethodGet, "/catalogues", "catalogues", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategoryIDs(ctx context.Context) ([]int, error) {
	var out []int
	if _, err := c.doRequest(ctx, http.MethodGet, "/categories/ids", "category_ids", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCategories(ctx context.Context, ids []int) ([]models.CategoryModel, error) {
	return batched[models.CategoryModel](ctx, c, "/categories/batch", "categories", ids, func(chunk []int) interface{} {
		return models.CategoryWebhookModel{CategoryIds: chunk}
	})
}

func (c *Client) GetCategory(ctx context.Context, id int) (*models.CategoryModel, error) {
	var out models.CategoryModel
	found, err := c.doRequest(ctx, http.MethodGet, "/categories/"+strconv.Itoa(id), "category", nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProductIDs(ctx context.Context) ([]int, error) {
	var out []int
	if _, err := c.doRequest(ctx, http.MethodGet, "/products/ids", "product_ids", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProducts(ctx context.Context, ids []int) ([]models.ProductModel, error) {
	return batched[models.ProductModel](ctx, c, "/products/batch", "products", ids, func(chunk []int) interface{} {
		return models.ProductWebhookModel{ProductIds: chunk}
	})
}

func (c *Client) ListProducts(ctx context.Context, limit int) ([]models.ProductModel, error) {
	query := url.Values{"limit": []string{strconv.Itoa(limit)}}
	var out []models.ProductModel
	if _, err := c.doRequest(ctx, http.MethodGet, "/products?"+query.Encode(), "products_list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProductClassifications(ctx context.Context, productID int) ([]models.ProductClassificationModel, error) {
	var out []models.ProductClassificationModel
	endpoint := "/products/" + strconv.Itoa(productID) + "/classifications"
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, "product_classifications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProductAttributeValues(ctx context.Context, productID int) (*models.AttributeValuesModel, error) {
	var out models.AttributeValuesModel
	endpoint := "/products/" + strconv.Itoa(productID) + "/attributevalues?globalListValueReferencesOnly=false"
	found, err := c.doRequest(ctx, http.MethodGet, endpoint, "product_attribute_values", nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetVariantIDs(ctx context.Context, productID *int) ([]int, error) {
	endpoint := "/variants/ids"
	if productID != nil {
		endpoint = "/products/" + strconv.Itoa(*productID) + "/variants/ids"
	}
	var out []int
	if _, err := c.doRequest(ctx, http.MethodGet, endpoint, "variant_ids", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetVariants(ctx context.Context, ids []int) ([]models.VariantModel, error) {
	return batched[models.VariantModel](ctx, c, "/variants/batch", "variants", ids, func(chunk []int) interface{} {
		return models.VariantWebhookModel{VariantIds: chunk}
	})
}

func (c *Client) GetVariantAttributeValues(ctx context.Context, variantID int) (*models.AttributeValuesModel, error) {
	var out models.AttributeValuesModel
	endpoint := "/variants/" + strconv.Itoa(variantID) + "/attributevalues?globalListValueReferencesOnly=false"
	found, err := c.doRequest(ctx, http.MethodGet, endpoint, "variant_attribute_values", nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProductStructures(ctx context.Context) ([]models.ProductStructure, error) {
	var out []models.ProductStructure
	if _, err := c.doRequest(ctx, http.MethodGet, "/productstructures", "product_structures", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProductStructure(ctx context.Context, uid uuid.UUID) (*models.ProductStructure, error) {
	var out models.ProductStructure
	found, err := c.doRequest(ctx, http.MethodGet, "/productstructures/"+uid.String(), "product_structure", nil, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLanguages(ctx context.Context) ([]models.LanguageModel, error) {
	var out []models.LanguageModel
	if _, err := c.doRequest(ctx, http.MethodGet, "/languages", "languages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAttributes(ctx context.Context, uids []uuid.UUID) ([]models.Attribute, error) {
	var out []models.Attribute
	if len(uids) == 0 {
		if _, err := c.doRequest(ctx, http.MethodGet, "/attributes", "attributes", nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	body := models.AttributeWebhookModel{AttributeUids: uids}
	if _, err := c.doRequest(ctx, http.MethodPost, "/attributes/batch", "attributes", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
