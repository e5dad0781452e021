package service

import (
	"errors"
	"testing"

	"github.com/windoze95/chefremy-api/internal/models"
	"github.com/windoze95/chefremy-api/internal/repository"
	"github.com/windoze95/chefremy-api/internal/testutil"
)

func newTestRecipeService(repo repository.RecipeRepo) *RecipeService {
	return NewRecipeService(testutil.TestConfig(), repo)
}

func TestFilterRecipes_Dinner(t *testing.T) {
	recipes := repository.DemoRecipes()

	got := FilterRecipes(recipes, "", "Dinner")
	if len(got) == 0 {
		t.Fatal("expected at least one Dinner recipe")
	}
	for _, r := range got {
		if r.Category != "Dinner" {
			t.Errorf("recipe %q has category %q, want Dinner", r.Title, r.Category)
		}
	}
}

func TestFilterRecipes_EmptySearchReturnsAll(t *testing.T) {
	recipes := repository.DemoRecipes()

	for _, category := range []string{"", models.CategoryAll} {
		got := FilterRecipes(recipes, "", category)
		if len(got) != len(recipes) {
			t.Errorf("category %q: got %d recipes, want %d", category, len(got), len(recipes))
		}
		for i := range got {
			if got[i].ID != recipes[i].ID {
				t.Errorf("category %q: order changed at %d", category, i)
			}
		}
	}
}

func TestFilterRecipes_SearchTitleAndDescription(t *testing.T) {
	recipes := []models.Recipe{
		{ID: "1", Title: "Chicken Alfredo", Description: "Creamy pasta", Category: "Dinner"},
		{ID: "2", Title: "Pancakes", Description: "Fluffy breakfast stack", Category: "Breakfast"},
		{ID: "3", Title: "Caesar Salad", Description: "Crisp romaine with CHICKEN", Category: "Lunch"},
	}

	got := FilterRecipes(recipes, "  chicken ", "")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("search chicken = %v, want recipes 1 and 3", ids(got))
	}

	got = FilterRecipes(recipes, "chicken", "Lunch")
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("search chicken in Lunch = %v, want recipe 3", ids(got))
	}

	got = FilterRecipes(recipes, "chicken", "dinner")
	if len(got) != 0 {
		t.Errorf("category match must be exact, got %v", ids(got))
	}
}

func ids(recipes []models.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}

func TestListRecipes_RepoError(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	repo.ListErr = errors.New("db down")

	svc := newTestRecipeService(repo)
	if _, err := svc.ListRecipes("", ""); err == nil {
		t.Fatal("ListRecipes should fail when the repository fails")
	}
}

func TestGetRecipe_NotFound(t *testing.T) {
	svc := newTestRecipeService(testutil.NewMockRecipeRepo())

	_, err := svc.GetRecipe("missing")
	if err == nil {
		t.Fatal("GetRecipe should return error for missing recipe")
	}
	if _, ok := err.(repository.NotFoundError); !ok {
		t.Errorf("GetRecipe error type = %T, want NotFoundError", err)
	}
}

func TestCategories(t *testing.T) {
	svc := newTestRecipeService(testutil.NewMockRecipeRepo())
	got := svc.Categories()
	want := []string{"Breakfast", "Lunch", "Dinner", "Snacks", "Dessert"}
	if len(got) != len(want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	got[0] = "Brunch"
	if models.Categories[0] != "Breakfast" {
		t.Error("Categories must return a copy")
	}
}

func TestCreateRecipe_Success(t *testing.T) {
	repo := testutil.NewMockRecipeRepo()
	svc := newTestRecipeService(repo)

	recipe := testutil.TestRecipe()
	recipe.ID = ""
	recipe.Steps[0], recipe.Steps[2] = recipe.Steps[2], recipe.Steps[0]

	if err := svc.CreateRecipe(&recipe); err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
	if recipe.ID == "" {
		t.Error("CreateRecipe should assign an ID")
	}
	if recipe.Steps[0].Order != 1 {
		t.Error("CreateRecipe should sort steps before validating")
	}
	if _, err := repo.GetRecipeByID(recipe.ID); err != nil {
		t.Errorf("recipe not stored: %v", err)
	}
}

func TestCreateRecipe_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.Recipe)
	}{
		{"empty title", func(r *models.Recipe) { r.Title = "  " }},
		{"bad difficulty", func(r *models.Recipe) { r.Difficulty = "Extreme" }},
		{"unknown category", func(r *models.Recipe) { r.Category = "Midnight" }},
		{"bad image", func(r *models.Recipe) { r.Image = "not a url at all" }},
		{"zero servings", func(r *models.Recipe) { r.Servings = 0 }},
		{"no steps", func(r *models.Recipe) { r.Steps = nil }},
		{"unknown ingredient", func(r *models.Recipe) { r.Steps[0].IngredientIDs = []string{"nope"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockRecipeRepo()
			svc := newTestRecipeService(repo)

			recipe := testutil.TestRecipe()
			tt.mutate(&recipe)

			err := svc.CreateRecipe(&recipe)
			if _, ok := err.(ValidationError); !ok {
				t.Fatalf("CreateRecipe error = %v (%T), want ValidationError", err, err)
			}
			if n, _ := repo.CountRecipes(); n != 0 {
				t.Errorf("invalid recipe was stored")
			}
		})
	}
}

func TestCreateRecipe_AllowsRelativeImage(t *testing.T) {
	svc := newTestRecipeService(testutil.NewMockRecipeRepo())
	recipe := testutil.TestRecipe()
	recipe.Image = "/images/custom.jpg"
	if err := svc.CreateRecipe(&recipe); err != nil {
		t.Fatalf("CreateRecipe error: %v", err)
	}
}
