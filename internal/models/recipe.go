package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"
)

// Difficulty is the type for the Difficulty enum.
type Difficulty string

// Difficulty enum values.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Categories is the fixed list of browsable recipe categories.
var Categories = []string{"Breakfast", "Lunch", "Dinner", "Snacks", "Dessert"}

// CategoryAll matches every category when filtering.
const CategoryAll = "All"

// Recipe is the model for a recipe.
type Recipe struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	Title       string      `json:"title" gorm:"not null"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	TotalTime   int         `json:"totalTime"` // minutes
	Difficulty  Difficulty  `json:"difficulty" gorm:"type:text"`
	Category    string      `json:"category" gorm:"index"`
	Servings    int         `json:"servings"`
	Ingredients Ingredients `json:"ingredients" gorm:"type:jsonb"`
	Steps       []Step      `json:"steps" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

// Ingredient is a struct that represents an ingredient in a recipe.
// Amount is free text so quantities like "1 3/4" survive untouched.
type Ingredient struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// Ingredients is a slice of Ingredient.
// This is a workaround for GORM to embed a slice of structs into a JSONB field.
type Ingredients []Ingredient

// Scan is a GORM hook that scans jsonb into Ingredients.
func (j *Ingredients) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := Ingredients{}
	err := json.Unmarshal(bytes, &result)
	*j = Ingredients(result)

	return err
}

// Value is a GORM hook that returns json value of Ingredients.
func (j Ingredients) Value() (driver.Value, error) {
	return json.Marshal(j)
}

// Step is a single ordered instruction of a recipe. Step IDs are only
// unique within their recipe.
type Step struct {
	ID            string         `json:"id" gorm:"primaryKey"`
	RecipeID      string         `json:"-" gorm:"primaryKey"`
	Order         int            `json:"order"`
	Text          string         `json:"text"`
	Duration      int            `json:"duration,omitempty"` // seconds
	CanParallel   bool           `json:"canParallel,omitempty"`
	IngredientIDs pq.StringArray `json:"ingredients" gorm:"type:text[];column:ingredient_ids"`
}

// TableName keeps the step table name explicit.
func (Step) TableName() string {
	return "recipe_steps"
}

// SortSteps orders the recipe's steps by their Order field.
func (r *Recipe) SortSteps() {
	sort.SliceStable(r.Steps, func(i, j int) bool {
		return r.Steps[i].Order < r.Steps[j].Order
	})
}

// Ingredient returns the ingredient with the given ID.
func (r *Recipe) Ingredient(id string) (Ingredient, bool) {
	for _, ing := range r.Ingredients {
		if ing.ID == id {
			return ing, true
		}
	}
	return Ingredient{}, false
}

// Validate checks the structural invariants of a recipe: steps are numbered
// 1..n in sequence and every ingredient a step references exists.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return errors.New("recipe must have at least one step")
	}

	seen := make(map[string]bool, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if ing.ID == "" {
			return errors.New("ingredient id is required")
		}
		if seen[ing.ID] {
			return fmt.Errorf("duplicate ingredient id %q", ing.ID)
		}
		seen[ing.ID] = true
	}

	for i, step := range r.Steps {
		if step.Order != i+1 {
			return fmt.Errorf("step %d has order %d, want %d", i, step.Order, i+1)
		}
		for _, id := range step.IngredientIDs {
			if !seen[id] {
				return fmt.Errorf("step %d references unknown ingredient %q", step.Order, id)
			}
		}
	}
	return nil
}

// IsValidDifficulty reports whether d is one of the Difficulty values.
func IsValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
