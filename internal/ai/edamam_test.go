package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdamamSearchRecipes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/recipes/v2", r.URL.Path)
		assert.Equal(t, "public", r.URL.Query().Get("type"))
		assert.Equal(t, "pasta", r.URL.Query().Get("q"))
		assert.Equal(t, "rid", r.URL.Query().Get("app_id"))
		assert.Equal(t, "rkey", r.URL.Query().Get("app_key"))
		assert.Equal(t, "2", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits":[
			{"recipe":{"label":"Pasta A","source":"Site","url":"http://a","cuisineType":["italian"],"totalTime":20,"calories":812.4,"yield":4}},
			{"recipe":{"label":"Pasta B","calories":500}},
			{"recipe":{"label":"Pasta C","calories":300}}
		]}`))
	}))
	defer srv.Close()

	c := NewEdamamClient("rid", "rkey", "", "").WithBaseURL(srv.URL)
	hits, err := c.SearchRecipes(context.Background(), "pasta", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Pasta A", hits[0].Label)
	assert.Equal(t, []string{"italian"}, hits[0].CuisineType)
	assert.Equal(t, 4.0, hits[0].Servings)
	assert.InDelta(t, 812.4, hits[0].Calories, 0.001)
	assert.Equal(t, "Pasta B", hits[1].Label)
}

func TestEdamamAnalyzeNutrition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/nutrition-data", r.URL.Path)
		assert.Equal(t, "1 cup rice", r.URL.Query().Get("ingr"))
		w.Write([]byte(`{"calories":206,"totalNutrients":{
			"PROCNT":{"quantity":4.3,"unit":"g"},
			"FAT":{"quantity":0.4,"unit":"g"},
			"CHOCDF":{"quantity":44.5,"unit":"g"}
		}}`))
	}))
	defer srv.Close()

	c := NewEdamamClient("", "", "nid", "nkey").WithBaseURL(srv.URL)
	facts, err := c.AnalyzeNutrition(context.Background(), "1 cup rice")
	require.NoError(t, err)
	assert.Equal(t, "1 cup rice", facts.Ingredient)
	assert.Equal(t, 206.0, facts.Calories)
	assert.Equal(t, 4.3, facts.Protein)
	assert.Equal(t, 44.5, facts.Carbs)
	assert.Zero(t, facts.Fiber)
}

func TestEdamamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	unconfigured := NewEdamamClient("", "", "", "")
	_, err := unconfigured.SearchRecipes(context.Background(), "pasta", 3)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	_, err = unconfigured.AnalyzeNutrition(context.Background(), "1 egg")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	c := NewEdamamClient("a", "b", "c", "d").WithBaseURL(srv.URL)
	_, err = c.SearchRecipes(context.Background(), "pasta", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
