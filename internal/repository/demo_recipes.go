package repository

import "github.com/windoze95/chefremy-api/internal/models"

func step(id string, order int, text string, duration int, canParallel bool, ingredientIDs ...string) models.Step {
	if ingredientIDs == nil {
		ingredientIDs = []string{}
	}
	return models.Step{
		ID:            id,
		Order:         order,
		Text:          text,
		Duration:      duration,
		CanParallel:   canParallel,
		IngredientIDs: ingredientIDs,
	}
}

// DemoRecipes returns the built-in catalog that seeds empty repositories.
func DemoRecipes() []models.Recipe {
	return []models.Recipe{
		{
			ID:          "1",
			Title:       "Chicken Alfredo with Garlic Bread",
			Description: "Creamy pasta with perfectly seasoned chicken and homemade garlic bread",
			Image:       "/images/chicken-alfredo.jpg",
			TotalTime:   25,
			Difficulty:  models.DifficultyMedium,
			Category:    "Dinner",
			Servings:    4,
			Ingredients: models.Ingredients{
				{ID: "1", Name: "chicken breast", Amount: "2", Unit: "pieces"},
				{ID: "2", Name: "heavy cream", Amount: "1", Unit: "cup"},
				{ID: "3", Name: "parmesan cheese", Amount: "1/2", Unit: "cup"},
				{ID: "4", Name: "fettuccine pasta", Amount: "12", Unit: "oz"},
				{ID: "5", Name: "garlic", Amount: "4", Unit: "cloves"},
				{ID: "6", Name: "butter", Amount: "3", Unit: "tbsp"},
				{ID: "7", Name: "italian bread", Amount: "1", Unit: "loaf"},
				{ID: "8", Name: "olive oil", Amount: "2", Unit: "tbsp"},
				{ID: "9", Name: "salt", Amount: "1", Unit: "tsp"},
				{ID: "10", Name: "black pepper", Amount: "1/2", Unit: "tsp"},
			},
			Steps: []models.Step{
				step("1", 1, "Bring a large pot of salted water to boil for pasta", 300, true),
				step("2", 2, "Season chicken breasts with salt and pepper, then cook in olive oil for 8 minutes per side", 480, true, "1", "8", "9", "10"),
				step("3", 3, "Cook fettuccine pasta according to package directions (usually 12 minutes)", 720, true, "4"),
				step("4", 4, "Mince garlic and melt butter in a large skillet over medium heat", 120, false, "5", "6"),
				step("5", 5, "Add garlic to melted butter and cook for 1 minute until fragrant", 60, false, "5"),
				step("6", 6, "Pour in heavy cream and bring to a gentle simmer", 180, false, "2"),
				step("7", 7, "Add parmesan cheese and whisk until smooth and creamy", 120, false, "3"),
				step("8", 8, "Slice cooked chicken and add to the alfredo sauce", 180, false, "1"),
				step("9", 9, "Toss drained pasta with the alfredo sauce and sliced chicken", 120, false, "4"),
				step("10", 10, "Slice bread, brush with butter and garlic, then toast until golden", 300, true, "7", "6", "5"),
			},
		},
		{
			ID:          "2",
			Title:       "Fluffy Pancakes with Berries",
			Description: "Perfect weekend breakfast with light, fluffy pancakes and fresh berries",
			Image:       "/images/breakfast-pancakes.jpg",
			TotalTime:   20,
			Difficulty:  models.DifficultyEasy,
			Category:    "Breakfast",
			Servings:    4,
			Ingredients: models.Ingredients{
				{ID: "11", Name: "all-purpose flour", Amount: "2", Unit: "cups"},
				{ID: "12", Name: "milk", Amount: "1 3/4", Unit: "cups"},
				{ID: "13", Name: "eggs", Amount: "2", Unit: "large"},
				{ID: "14", Name: "sugar", Amount: "2", Unit: "tbsp"},
				{ID: "15", Name: "baking powder", Amount: "2", Unit: "tsp"},
				{ID: "16", Name: "salt", Amount: "1/2", Unit: "tsp"},
				{ID: "17", Name: "butter", Amount: "4", Unit: "tbsp"},
				{ID: "18", Name: "mixed berries", Amount: "1", Unit: "cup"},
				{ID: "19", Name: "maple syrup", Amount: "1/2", Unit: "cup"},
			},
			Steps: []models.Step{
				step("11", 1, "Heat griddle or large skillet over medium heat", 180, false),
				step("12", 2, "Mix flour, sugar, baking powder, and salt in a large bowl", 120, false, "11", "14", "15", "16"),
				step("13", 3, "In another bowl, whisk together milk, eggs, and melted butter", 180, false, "12", "13", "17"),
				step("14", 4, "Pour wet ingredients into dry ingredients and stir until just combined", 60, false),
				step("15", 5, "Pour 1/4 cup batter for each pancake onto hot griddle", 240, false),
				step("16", 6, "Cook until bubbles form on surface, then flip and cook 2 more minutes", 180, false),
				step("17", 7, "Serve hot with fresh berries and maple syrup", 60, false, "18", "19"),
			},
		},
		{
			ID:          "3",
			Title:       "Classic Chocolate Chip Cookies",
			Description: "Crispy on the outside, chewy on the inside - the perfect chocolate chip cookie",
			Image:       "/images/chocolate-cookies.jpg",
			TotalTime:   45,
			Difficulty:  models.DifficultyEasy,
			Category:    "Dessert",
			Servings:    24,
			Ingredients: models.Ingredients{
				{ID: "20", Name: "all-purpose flour", Amount: "2 1/4", Unit: "cups"},
				{ID: "21", Name: "butter", Amount: "1", Unit: "cup"},
				{ID: "22", Name: "brown sugar", Amount: "3/4", Unit: "cup"},
				{ID: "23", Name: "white sugar", Amount: "3/4", Unit: "cup"},
				{ID: "24", Name: "eggs", Amount: "2", Unit: "large"},
				{ID: "25", Name: "vanilla extract", Amount: "2", Unit: "tsp"},
				{ID: "26", Name: "baking soda", Amount: "1", Unit: "tsp"},
				{ID: "27", Name: "salt", Amount: "1", Unit: "tsp"},
				{ID: "28", Name: "chocolate chips", Amount: "2", Unit: "cups"},
			},
			Steps: []models.Step{
				step("18", 1, "Preheat oven to 375°F (190°C)", 600, false),
				step("19", 2, "Cream together butter and both sugars until light and fluffy", 180, false, "21", "22", "23"),
				step("20", 3, "Beat in eggs one at a time, then add vanilla", 120, false, "24", "25"),
				step("21", 4, "Mix flour, baking soda, and salt in separate bowl", 60, false, "20", "26", "27"),
				step("22", 5, "Gradually blend dry ingredients into wet mixture", 120, false),
				step("23", 6, "Stir in chocolate chips", 30, false, "28"),
				step("24", 7, "Drop rounded tablespoons onto ungreased baking sheets", 300, false),
				step("25", 8, "Bake for 9-11 minutes until golden brown", 600, false),
			},
		},
		{
			ID:          "4",
			Title:       "Fresh Caesar Salad",
			Description: "Crisp romaine lettuce with homemade Caesar dressing and garlic croutons",
			Image:       "/images/caesar-salad.jpg",
			TotalTime:   15,
			Difficulty:  models.DifficultyEasy,
			Category:    "Lunch",
			Servings:    4,
			Ingredients: models.Ingredients{
				{ID: "29", Name: "romaine lettuce", Amount: "2", Unit: "heads"},
				{ID: "30", Name: "parmesan cheese", Amount: "1/2", Unit: "cup"},
				{ID: "31", Name: "croutons", Amount: "1", Unit: "cup"},
				{ID: "32", Name: "caesar dressing", Amount: "1/2", Unit: "cup"},
				{ID: "33", Name: "black pepper", Amount: "1/4", Unit: "tsp"},
				{ID: "34", Name: "lemon", Amount: "1/2", Unit: "piece"},
			},
			Steps: []models.Step{
				step("26", 1, "Wash and chop romaine lettuce into bite-sized pieces", 180, false, "29"),
				step("27", 2, "Place lettuce in large salad bowl", 30, false, "29"),
				step("28", 3, "Add Caesar dressing and toss gently to coat", 60, false, "32"),
				step("29", 4, "Top with grated parmesan cheese and croutons", 60, false, "30", "31"),
				step("30", 5, "Finish with fresh cracked black pepper and lemon juice", 30, false, "33", "34"),
			},
		},
	}
}
