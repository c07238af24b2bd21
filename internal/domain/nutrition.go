package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Grams is a macro quantity in grams. The trainer-facing builder UI
// submits these as free-form inputs, so the JSON decoder accepts a
// number, a numeric string, or null, and degrades anything else to 0
// instead of failing the whole payload.
type Grams float64

// UnmarshalJSON implements tolerant numeric decoding for Grams.
func (g *Grams) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*g = 0
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*g = Grams(v)
		return nil
	}
	// Quoted string, e.g. "12.5". Garbage counts as 0.
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
			*g = Grams(v)
			return nil
		}
	}
	*g = 0
	return nil
}

// MacroTotals is the summed nutrition of a plan's meal items.
type MacroTotals struct {
	Protein  float64 `json:"protein_g"`
	Carbs    float64 `json:"carbs_g"`
	Fat      float64 `json:"fat_g"`
	Calories float64 `json:"calories_kcal"`
}

// AggregateMeals sums the macro and calorie fields of the given meal
// items. Negative inputs contribute 0, so totals are never negative.
func AggregateMeals(meals []MealItem) MacroTotals {
	var t MacroTotals
	for _, m := range meals {
		t.Protein += nonNegative(float64(m.ProteinG))
		t.Carbs += nonNegative(float64(m.CarbsG))
		t.Fat += nonNegative(float64(m.FatG))
		t.Calories += nonNegative(float64(m.CaloriesKcal))
	}
	return t
}

// DeriveCalories computes kcal from macro grams (4/4/9 rule), rounded
// to the nearest integer. Fired whenever any macro field of a meal item
// changes; the result overwrites a manually typed calorie figure, so
// macro edits are authoritative.
func DeriveCalories(proteinG, carbsG, fatG float64) int {
	kcal := proteinG*4 + carbsG*4 + fatG*9
	if kcal < 0 {
		return 0
	}
	return int(math.Round(kcal))
}

// ExerciseTotals is the summed volume of a plan's exercise items.
type ExerciseTotals struct {
	Exercises       int            `json:"exercises"`
	Sets            int            `json:"sets"`
	DurationMinutes int            `json:"duration_minutes"`
	ByCategory      map[string]int `json:"by_category,omitempty"`
}

// AggregateExercises sums set counts and durations across exercise
// items and counts items per category. Like AggregateMeals it never
// fails; negative values contribute 0.
func AggregateExercises(exercises []ExerciseItem) ExerciseTotals {
	t := ExerciseTotals{}
	for _, ex := range exercises {
		t.Exercises++
		if ex.Sets > 0 {
			t.Sets += ex.Sets
		}
		if ex.Duration > 0 {
			t.DurationMinutes += ex.Duration
		}
		if ex.Category != "" {
			if t.ByCategory == nil {
				t.ByCategory = make(map[string]int)
			}
			t.ByCategory[ex.Category]++
		}
	}
	return t
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
