package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kerbaras/recipes/pkg/data"
	"github.com/kerbaras/recipes/pkg/utils"
)

const (
	DefaultMealDBURL = "https://www.themealdb.com/api/json/v1/1"

	// maxIngredients is the number of strIngredientN/strMeasureN pairs per meal.
	maxIngredients = 20
)

type Meal struct {
	ID           string `json:"idMeal"`
	Name         string `json:"strMeal"`
	Category     string `json:"strCategory"`
	Area         string `json:"strArea"`
	Thumb        string `json:"strMealThumb"`
	Instructions string `json:"strInstructions"`

	Ingredients [maxIngredients]string `json:"-"`
	Measures    [maxIngredients]string `json:"-"`
}

func (m *Meal) UnmarshalJSON(b []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	m.ID = stringField(fields, "idMeal")
	m.Name = stringField(fields, "strMeal")
	m.Category = stringField(fields, "strCategory")
	m.Area = stringField(fields, "strArea")
	m.Thumb = stringField(fields, "strMealThumb")
	m.Instructions = stringField(fields, "strInstructions")
	for i := 0; i < maxIngredients; i++ {
		m.Ingredients[i] = stringField(fields, fmt.Sprintf("strIngredient%d", i+1))
		m.Measures[i] = stringField(fields, fmt.Sprintf("strMeasure%d", i+1))
	}
	return nil
}

// stringField returns fields[key] when it is a string. Nulls and other
// JSON types read as empty.
func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func (m *Meal) ToRecipe() data.Recipe {
	ingredients := []data.Ingredient{}
	for i := 0; i < maxIngredients; i++ {
		item := strings.TrimSpace(m.Ingredients[i])
		if item == "" {
			continue
		}
		ingredients = append(ingredients, data.Ingredient{
			Item:    item,
			Measure: strings.TrimSpace(m.Measures[i]),
		})
	}

	return data.Recipe{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		Origin:       m.Area,
		Thumbnail:    m.Thumb,
		Ingredients:  ingredients,
		Instructions: m.Instructions,
	}
}

// MealDB searches TheMealDB by meal name.
type MealDB struct {
	api *utils.API
}

func NewMealDB(baseURL string, client *http.Client) *MealDB {
	if baseURL == "" {
		baseURL = DefaultMealDBURL
	}
	return &MealDB{api: utils.NewAPI(strings.TrimRight(baseURL, "/"), client)}
}

func (m *MealDB) Search(ctx context.Context, query string) ([]data.Recipe, error) {
	var resp struct {
		// Meals is null when nothing matches.
		Meals []Meal `json:"meals"`
	}
	if err := m.api.Get(ctx, "/search.php", url.Values{"s": {query}}, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	out := make([]data.Recipe, len(resp.Meals))
	for i := range resp.Meals {
		out[i] = resp.Meals[i].ToRecipe()
	}
	return out, nil
}
