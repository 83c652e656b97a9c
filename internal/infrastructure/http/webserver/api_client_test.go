package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutriva/nutriva/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string) *APIClient {
	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	return NewAPIClient(cfg, zap.NewNop())
}

func TestSearchRecipes(t *testing.T) {
	t.Run("successful search decodes recipes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/recipes/search", r.URL.Path)

			var req SearchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "dinner", req.MealType)
			assert.Equal(t, []string{"chicken", "rice"}, req.Ingredients)

			json.NewEncoder(w).Encode(SearchResponse{
				Success: true,
				Recipes: []Recipe{{ID: 7, Title: "Chicken Rice"}},
			})
		}))
		defer server.Close()

		resp, err := newTestClient(server.URL).SearchRecipes(context.Background(), SearchRequest{
			MealType:    "dinner",
			Ingredients: []string{"chicken", "rice"},
		})

		require.NoError(t, err)
		require.Len(t, resp.Recipes, 1)
		assert.Equal(t, "Chicken Rice", resp.Recipes[0].Title)
	})

	t.Run("missing meal type rejected locally", func(t *testing.T) {
		_, err := newTestClient("http://localhost:1").SearchRecipes(context.Background(), SearchRequest{
			Ingredients: []string{"chicken"},
		})
		assert.Error(t, err)
	})

	t.Run("empty ingredients rejected locally", func(t *testing.T) {
		_, err := newTestClient("http://localhost:1").SearchRecipes(context.Background(), SearchRequest{
			MealType: "dinner",
		})
		assert.Error(t, err)
	})

	t.Run("backend error envelope surfaces as network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SearchResponse{Success: false, Error: "upstream quota exceeded"})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).SearchRecipes(context.Background(), SearchRequest{
			MealType:    "dinner",
			Ingredients: []string{"chicken"},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "upstream quota exceeded")
	})

	t.Run("unreachable backend is an opaque network error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		_, err := newTestClient(server.URL).SearchRecipes(context.Background(), SearchRequest{
			MealType:    "dinner",
			Ingredients: []string{"chicken"},
		})

		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestGetRecipeDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipes/42", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"recipe":  map[string]interface{}{"id": 42, "title": "Feijoada"},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).GetRecipeDetails(context.Background(), 42)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Recipe), "Feijoada")
}

func TestGetIngredientNutrition(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path escaping must survive ingredients with spaces.
		assert.Equal(t, "/api/nutrition/ingredient/sweet%20potato", r.URL.EscapedPath())
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"nutrition": map[string]interface{}{"calories": 86},
		})
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).GetIngredientNutrition(context.Background(), "sweet potato")

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestCompareNutrition(t *testing.T) {
	t.Run("empty list rejected locally", func(t *testing.T) {
		_, err := newTestClient("http://localhost:1").CompareNutrition(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("forwards ingredient list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req CompareRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"rice", "quinoa"}, req.Ingredients)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "comparison": []string{}})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).CompareNutrition(context.Background(), []string{"rice", "quinoa"})
		require.NoError(t, err)
	})
}

func TestCheckHealth(t *testing.T) {
	t.Run("healthy backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		assert.True(t, newTestClient(server.URL).CheckHealth(context.Background()))
	})

	t.Run("unreachable backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		assert.False(t, newTestClient(server.URL).CheckHealth(context.Background()))
	})
}
