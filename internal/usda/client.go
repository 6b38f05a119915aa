// Package usda is a client for the USDA FoodData Central API. All nutrition
// values returned are per 100 g of product.
package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vithika-cyber/calorie-bot/internal/models"
	"go.uber.org/zap"
)

// FDC nutrient IDs, the reliable way to pick macros out of a response.
const (
	nutrientEnergy  = 1008
	nutrientProtein = 1003
	nutrientCarbs   = 1005
	nutrientFat     = 1004
	nutrientFiber   = 1079
	nutrientSugar   = 2000
)

type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(baseURL, apiKey string, pageSize int, timeout time.Duration, logger *zap.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type searchResponse struct {
	Foods []foodPayload `json:"foods"`
}

type foodPayload struct {
	FDCID         int64             `json:"fdcId"`
	Description   string            `json:"description"`
	DataType      string            `json:"dataType"`
	FoodNutrients []nutrientPayload `json:"foodNutrients"`
}

type nutrientPayload struct {
	NutrientID   int64   `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// Search queries the food database by name. Candidates without calorie data
// are dropped; an empty slice means "no candidates", which callers treat as
// this tier yielding nothing.
func (c *Client) Search(ctx context.Context, query string) ([]models.FoodRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Add("dataType", "Survey (FNDDS)")
	params.Add("dataType", "Foundation")
	params.Add("dataType", "SR Legacy")
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var resp searchResponse
	if err := c.get(ctx, "/foods/search", params, &resp); err != nil {
		return nil, err
	}

	records := make([]models.FoodRecord, 0, len(resp.Foods))
	for _, food := range resp.Foods {
		if rec, ok := parseFood(food); ok {
			records = append(records, rec)
		}
	}

	c.logger.Debug("usda search",
		zap.String("query", query),
		zap.Int("results", len(records)))
	return records, nil
}

// GetFood fetches one record by its FDC ID.
func (c *Client) GetFood(ctx context.Context, fdcID int64) (*models.FoodRecord, error) {
	params := url.Values{}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	var food foodPayload
	if err := c.get(ctx, fmt.Sprintf("/food/%d", fdcID), params, &food); err != nil {
		return nil, err
	}

	rec, ok := parseFood(food)
	if !ok {
		return nil, fmt.Errorf("food %d has no calorie data", fdcID)
	}
	return &rec, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling food database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("food database returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func parseFood(food foodPayload) (models.FoodRecord, bool) {
	rec := models.FoodRecord{
		FDCID:       food.FDCID,
		Description: food.Description,
		DataType:    food.DataType,
	}

	hasCalories := false
	for _, n := range food.FoodNutrients {
		switch n.NutrientID {
		case nutrientEnergy:
			rec.Per100g.Calories = n.Value
			hasCalories = true
		case nutrientProtein:
			rec.Per100g.Protein = n.Value
		case nutrientCarbs:
			rec.Per100g.Carbs = n.Value
		case nutrientFat:
			rec.Per100g.Fat = n.Value
		case nutrientFiber:
			rec.Per100g.Fiber = n.Value
		case nutrientSugar:
			rec.Per100g.Sugar = n.Value
		}
	}

	return rec, hasCalories
}
