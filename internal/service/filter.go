package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/darkinowls/recipe-app-api/internal/repository"
)

// ParseIDList reads a comma separated list of ids. It returns nil, meaning
// "no filter", when the parameter is empty or any token is not an integer.
// Negative and out-of-range integers name no row, so they are left out of
// the result without widening it.
func ParseIDList(param string) []uint {
	if strings.TrimSpace(param) == "" {
		return nil
	}

	tokens := strings.Split(param, ",")
	ids := make([]uint, 0, len(tokens))
	seen := make(map[uint]struct{}, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			continue
		}
		if err != nil {
			return nil
		}
		if n < 0 {
			continue
		}
		id := uint(n)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// BuildRecipeFilter turns the tags and ingredients query parameters into a
// repository filter.
func BuildRecipeFilter(tagsParam, ingredientsParam string) repository.RecipeFilter {
	return repository.RecipeFilter{
		TagIDs:        ParseIDList(tagsParam),
		IngredientIDs: ParseIDList(ingredientsParam),
	}
}

// BuildAttrFilter reads assigned_only. Any non-zero integer enables it.
func BuildAttrFilter(assignedOnlyParam string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(assignedOnlyParam))
	return err == nil && n != 0
}
