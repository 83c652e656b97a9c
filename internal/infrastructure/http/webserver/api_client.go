package webserver

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

	"github.com/nutriva/nutriva/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNetwork is the opaque error the rest of the page sees for any
// backend API failure. The underlying cause is logged, never rendered.
var ErrNetwork = errors.New("recipe API request failed")

// APIClient handles communication with the backend recipe API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client instance
func NewAPIClient(cfg *config.Config, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: cfg.API.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
		logger: logger.Named("api-client"),
	}
}

// SearchRequest represents recipe search parameters
type SearchRequest struct {
	MealType     string   `json:"mealType"`
	Ingredients  []string `json:"ingredients"`
	Diet         string   `json:"diet,omitempty"`
	Intolerances []string `json:"intolerances"`
}

// Recipe represents one recipe in a search result
type Recipe struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Image    string  `json:"image"`
	Calories float64 `json:"calories,omitempty"`
}

// SearchResponse represents a recipe search response
type SearchResponse struct {
	Success       bool     `json:"success"`
	Recipes       []Recipe `json:"recipes"`
	AISuggestions string   `json:"ai_suggestions,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// RecipeDetailsResponse represents a single recipe with full details
type RecipeDetailsResponse struct {
	Success bool            `json:"success"`
	Recipe  json.RawMessage `json:"recipe"`
	Error   string          `json:"error,omitempty"`
}

// SuggestionsRequest represents AI suggestion parameters
type SuggestionsRequest struct {
	Ingredients  []string `json:"ingredients"`
	MealType     string   `json:"mealType"`
	Diet         string   `json:"diet,omitempty"`
	Intolerances []string `json:"intolerances"`
}

// SuggestionsResponse represents an AI suggestion response
type SuggestionsResponse struct {
	Success     bool   `json:"success"`
	Suggestions string `json:"suggestions"`
	Error       string `json:"error,omitempty"`
}

// NutritionResponse represents ingredient nutrition data
type NutritionResponse struct {
	Success   bool            `json:"success"`
	Nutrition json.RawMessage `json:"nutrition"`
	Error     string          `json:"error,omitempty"`
}

// CompareRequest represents a nutrition comparison request
type CompareRequest struct {
	Ingredients []string `json:"ingredients"`
}

// CompareResponse represents a nutrition comparison response
type CompareResponse struct {
	Success    bool            `json:"success"`
	Comparison json.RawMessage `json:"comparison"`
	Error      string          `json:"error,omitempty"`
}

// SearchRecipes searches for recipes matching the user's meal type,
// ingredients and dietary preferences.
func (c *APIClient) SearchRecipes(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.MealType == "" {
		return nil, fmt.Errorf("meal type is required")
	}
	if len(req.Ingredients) == 0 {
		return nil, fmt.Errorf("at least one ingredient is required")
	}

	var resp SearchResponse
	if err := c.post(ctx, "/api/recipes/search", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("recipe search", resp.Error)
	}

	return &resp, nil
}

// GetRecipeDetails fetches full details for one recipe.
func (c *APIClient) GetRecipeDetails(ctx context.Context, recipeID int) (*RecipeDetailsResponse, error) {
	if recipeID <= 0 {
		return nil, fmt.Errorf("recipe id is required")
	}

	var resp RecipeDetailsResponse
	if err := c.get(ctx, "/api/recipes/"+strconv.Itoa(recipeID), &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("recipe details", resp.Error)
	}

	return &resp, nil
}

// GetAISuggestions fetches personalized suggestions for the given search.
func (c *APIClient) GetAISuggestions(ctx context.Context, req SuggestionsRequest) (*SuggestionsResponse, error) {
	var resp SuggestionsResponse
	if err := c.post(ctx, "/api/ai/suggestions", req, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("ai suggestions", resp.Error)
	}

	return &resp, nil
}

// GetIngredientNutrition looks up nutrition facts for one ingredient.
func (c *APIClient) GetIngredientNutrition(ctx context.Context, ingredient string) (*NutritionResponse, error) {
	if ingredient == "" {
		return nil, fmt.Errorf("ingredient name is required")
	}

	var resp NutritionResponse
	if err := c.get(ctx, "/api/nutrition/ingredient/"+url.PathEscape(ingredient), &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("ingredient nutrition", resp.Error)
	}

	return &resp, nil
}

// GetNutritionDetails fetches the complete nutrient breakdown for a food.
func (c *APIClient) GetNutritionDetails(ctx context.Context, fdcID int) (*NutritionResponse, error) {
	if fdcID <= 0 {
		return nil, fmt.Errorf("food id is required")
	}

	var resp NutritionResponse
	if err := c.get(ctx, "/api/nutrition/details/"+strconv.Itoa(fdcID), &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("nutrition details", resp.Error)
	}

	return &resp, nil
}

// CompareNutrition compares nutrition facts across several ingredients.
func (c *APIClient) CompareNutrition(ctx context.Context, ingredients []string) (*CompareResponse, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("an ingredient list is required")
	}

	var resp CompareResponse
	if err := c.post(ctx, "/api/nutrition/compare", CompareRequest{Ingredients: ingredients}, &resp); err != nil {
		return nil, err
	}

	if !resp.Success {
		return nil, c.apiError("nutrition comparison", resp.Error)
	}

	return &resp, nil
}

// CheckHealth reports whether the backend API is reachable.
func (c *APIClient) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

func (c *APIClient) post(ctx context.Context, path string, body interface{}, response interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, response)
}

func (c *APIClient) get(ctx context.Context, path string, response interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.doRequest(req, response)
}

func (c *APIClient) doRequest(req *http.Request, response interface{}) error {
	c.logger.Debug("API request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	// Error responses still carry the success/error envelope; decode
	// them so the caller gets the backend's message.
	if err := json.Unmarshal(body, response); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%w: status %d", ErrNetwork, resp.StatusCode)
		}
		return fmt.Errorf("%w: decoding response: %v", ErrNetwork, err)
	}

	return nil
}

func (c *APIClient) apiError(op, message string) error {
	c.logger.Error("API error response",
		zap.String("operation", op),
		zap.String("error", message),
	)
	if message == "" {
		return ErrNetwork
	}
	return fmt.Errorf("%w: %s", ErrNetwork, message)
}
