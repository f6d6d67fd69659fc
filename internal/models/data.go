package models

import "time"

// InventoryItem представляет позицию домашних запасов.
type InventoryItem struct {
	UpdatedAt time.Time `json:"updated_at"` // UpdatedAt время последнего изменения
	ID        string    `json:"id"`         // ID идентификатор позиции
	Name      string    `json:"name"`       // Name название продукта
	Unit      string    `json:"unit"`       // Unit единица измерения ("kg", "pcs")
	Location  string    `json:"location"`   // Location место хранения (холодильник, кладовая)
	Notes     string    `json:"notes"`      // Notes свободный текст
	Quantity  float64   `json:"quantity"`   // Quantity количество
}

// ShoppingListItem представляет позицию списка покупок.
type ShoppingListItem struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Notes     string    `json:"notes"`
	Quantity  float64   `json:"quantity"`
	Completed bool      `json:"completed"` // Completed позиция куплена
}

// MealPlanEntry представляет запланированный прием пищи.
type MealPlanEntry struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Date      string    `json:"date"`      // Date день в формате YYYY-MM-DD
	Meal      string    `json:"meal"`      // Meal breakfast/lunch/dinner
	RecipeID  string    `json:"recipe_id"` // RecipeID ссылка на рецепт (опционально)
	Notes     string    `json:"notes"`
	Servings  int       `json:"servings"`
	Cooked    bool      `json:"cooked"` // Cooked блюдо приготовлено
}

// Recipe представляет рецепт household.
type Recipe struct {
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Notes        string    `json:"notes"`
	Ingredients  []string  `json:"ingredients"`
	Servings     int       `json:"servings"`
	Favorite     bool      `json:"favorite"`
}
