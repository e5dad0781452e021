package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const edamamBaseURL = "https://api.edamam.com"

// EdamamClient implements RecipeSearchProvider and NutritionProvider against
// the Edamam recipe and nutrition APIs. The two APIs use separate
// credentials; either half may be left unset.
type EdamamClient struct {
	baseURL         string
	recipeAppID     string
	recipeAppKey    string
	nutritionAppID  string
	nutritionAppKey string
	httpClient      *http.Client
}

// NewEdamamClient creates an Edamam client.
func NewEdamamClient(recipeAppID, recipeAppKey, nutritionAppID, nutritionAppKey string) *EdamamClient {
	return &EdamamClient{
		baseURL:         edamamBaseURL,
		recipeAppID:     recipeAppID,
		recipeAppKey:    recipeAppKey,
		nutritionAppID:  nutritionAppID,
		nutritionAppKey: nutritionAppKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL points the client at another host, such as a test server.
func (c *EdamamClient) WithBaseURL(baseURL string) *EdamamClient {
	c.baseURL = baseURL
	return c
}

type edamamSearchResponse struct {
	Hits []struct {
		Recipe struct {
			Label       string   `json:"label"`
			Image       string   `json:"image"`
			Source      string   `json:"source"`
			URL         string   `json:"url"`
			CuisineType []string `json:"cuisineType"`
			TotalTime   float64  `json:"totalTime"`
			Calories    float64  `json:"calories"`
			Yield       float64  `json:"yield"`
		} `json:"recipe"`
	} `json:"hits"`
}

type edamamNutrient struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type edamamNutritionResponse struct {
	Calories       float64                   `json:"calories"`
	TotalNutrients map[string]edamamNutrient `json:"totalNutrients"`
}

func (c *EdamamClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create edamam request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("edamam request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read edamam response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("edamam API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse edamam response: %w", err)
	}
	return nil
}

// SearchRecipes returns up to count public recipes matching query.
func (c *EdamamClient) SearchRecipes(ctx context.Context, query string, count int) ([]RecipeHit, error) {
	if c.recipeAppID == "" || c.recipeAppKey == "" {
		return nil, ErrNotConfigured
	}
	if count <= 0 {
		count = 3
	}

	params := url.Values{}
	params.Set("type", "public")
	params.Set("q", query)
	params.Set("app_id", c.recipeAppID)
	params.Set("app_key", c.recipeAppKey)
	params.Set("from", "0")
	params.Set("to", fmt.Sprintf("%d", count))

	var sr edamamSearchResponse
	if err := c.get(ctx, "/api/recipes/v2", params, &sr); err != nil {
		return nil, err
	}

	hits := make([]RecipeHit, 0, count)
	for _, h := range sr.Hits {
		if len(hits) == count {
			break
		}
		hits = append(hits, RecipeHit{
			Label:       h.Recipe.Label,
			Source:      h.Recipe.Source,
			URL:         h.Recipe.URL,
			Image:       h.Recipe.Image,
			CuisineType: h.Recipe.CuisineType,
			TotalTime:   h.Recipe.TotalTime,
			Calories:    h.Recipe.Calories,
			Servings:    h.Recipe.Yield,
		})
	}
	return hits, nil
}

// AnalyzeNutrition returns calories and macros for one ingredient line such
// as "1 cup rice".
func (c *EdamamClient) AnalyzeNutrition(ctx context.Context, ingredient string) (*NutritionFacts, error) {
	if c.nutritionAppID == "" || c.nutritionAppKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("app_id", c.nutritionAppID)
	params.Set("app_key", c.nutritionAppKey)
	params.Set("ingr", ingredient)

	var nr edamamNutritionResponse
	if err := c.get(ctx, "/api/nutrition-data", params, &nr); err != nil {
		return nil, err
	}

	return &NutritionFacts{
		Ingredient: ingredient,
		Calories:   nr.Calories,
		Protein:    nr.TotalNutrients["PROCNT"].Quantity,
		Fat:        nr.TotalNutrients["FAT"].Quantity,
		Carbs:      nr.TotalNutrients["CHOCDF"].Quantity,
		Fiber:      nr.TotalNutrients["FIBTG"].Quantity,
	}, nil
}
