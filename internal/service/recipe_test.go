package service_test

import (
	"context"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkinowls/recipe-app-api/internal/models"
	"github.com/darkinowls/recipe-app-api/internal/repository"
	"github.com/darkinowls/recipe-app-api/internal/service"
	"github.com/darkinowls/recipe-app-api/internal/types"
)

func refs(names ...string) *[]types.NameRef {
	out := make([]types.NameRef, 0, len(names))
	for _, n := range names {
		out = append(out, types.NameRef{Name: n})
	}
	return &out
}

func sampleRecipe(title string, tags, ingredients *[]types.NameRef) *types.RecipeRequest {
	price := models.Price(500)
	return &types.RecipeRequest{
		Title:       strPtr(title),
		TimeMinutes: intPtr(30),
		Price:       &price,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func tagNames(r *models.Recipe) []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

func ingredientNames(r *models.Recipe) []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		names = append(names, i.Name)
	}
	sort.Strings(names)
	return names
}

func newUser(t *testing.T, f *fixture, email string) *models.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), email, "testpass123", "Cook")
	require.NoError(t, err)
	return user
}

func TestCreateRecipeWithNewTags(t *testing.T) {
	f := setup(t)
	user := newUser(t, f, "cook@example.com")

	recipe, err := f.recipes.Create(context.Background(), user.ID,
		sampleRecipe("Thai Prawn Curry", refs("Thai", "Dinner"), refs("Prawns", "Coconut milk")))
	require.NoError(t, err)

	assert.Equal(t, "Thai Prawn Curry", recipe.Title)
	assert.Equal(t, []string{"Dinner", "Thai"}, tagNames(recipe))
	assert.Equal(t, []string{"Coconut milk", "Prawns"}, ingredientNames(recipe))
	for _, tag := range recipe.Tags {
		assert.Equal(t, user.ID, tag.UserID)
	}
}

func TestCreateRecipeTwiceReusesTags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")

	first, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Pongal", refs("Indian", "Breakfast"), nil))
	require.NoError(t, err)
	second, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Pongal", refs("Breakfast", "Indian", "Indian"), nil))
	require.NoError(t, err)

	tags, err := f.tags.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	assert.Len(t, second.Tags, 2)
	assert.ElementsMatch(t, first.Tags, second.Tags)
}

func TestCreateRecipeAbsentNestedListsAttachNothing(t *testing.T) {
	f := setup(t)
	user := newUser(t, f, "cook@example.com")

	recipe, err := f.recipes.Create(context.Background(), user.ID, sampleRecipe("Plain", nil, nil))
	require.NoError(t, err)
	assert.Empty(t, recipe.Tags)
	assert.Empty(t, recipe.Ingredients)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setup(t)
	user := newUser(t, f, "cook@example.com")

	_, err := f.recipes.Create(context.Background(), user.ID, &types.RecipeRequest{Title: strPtr("  ")})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "time_minutes")
	assert.Contains(t, verr.Fields, "price")

	_, err = f.recipes.Create(context.Background(), user.ID, sampleRecipe("Soup", refs("ok", " "), nil))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "tags")

	tags, err := f.tags.List(context.Background(), user.ID, false)
	require.NoError(t, err)
	assert.Empty(t, tags, "nothing is created when validation fails")
}

func TestCreateRecipeTrimsNames(t *testing.T) {
	f := setup(t)
	user := newUser(t, f, "cook@example.com")

	recipe, err := f.recipes.Create(context.Background(), user.ID, sampleRecipe("Soup", refs(" Warm ", "Warm"), nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"Warm"}, tagNames(recipe))
}

func TestTagsAreIsolatedBetweenUsers(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := newUser(t, f, "alice@example.com")
	bob := newUser(t, f, "bob@example.com")

	a, err := f.recipes.Create(ctx, alice.ID, sampleRecipe("A", refs("Vegan"), nil))
	require.NoError(t, err)
	b, err := f.recipes.Create(ctx, bob.ID, sampleRecipe("B", refs("Vegan"), nil))
	require.NoError(t, err)

	assert.NotEqual(t, a.Tags[0].ID, b.Tags[0].ID)
	assert.Equal(t, bob.ID, b.Tags[0].UserID)

	_, err = f.recipes.Get(ctx, bob.ID, a.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.recipes.Update(ctx, bob.ID, a.ID, &types.RecipeRequest{Title: strPtr("Mine now")}, true)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.ErrorIs(t, f.recipes.Delete(ctx, bob.ID, a.ID), service.ErrNotFound)

	list, err := f.recipes.List(ctx, bob.ID, repository.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestPartialUpdateTagsRoundTrip(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Cake", refs("Breakfast"), refs("Flour")))
	require.NoError(t, err)

	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{Tags: refs("vegan", "dessert")}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"dessert", "vegan"}, tagNames(updated))
	assert.Equal(t, []string{"Flour"}, ingredientNames(updated), "absent list is untouched")
	assert.Equal(t, "Cake", updated.Title)

	reread, err := f.recipes.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dessert", "vegan"}, tagNames(reread))

	tags, err := f.tags.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 3, "detached tag survives")
}

func TestPartialUpdateEmptyListClears(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Cake", refs("Dessert"), refs("Sugar")))
	require.NoError(t, err)

	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{Tags: refs()}, true)
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.Len(t, updated.Ingredients, 1)
}

func TestFullUpdateClearsAbsentLists(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Cake", refs("Dessert"), refs("Sugar")))
	require.NoError(t, err)

	req := sampleRecipe("Spaghetti carbonara", nil, refs("Eggs"))
	req.Link = strPtr("https://example.com/carbonara")
	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, req, false)
	require.NoError(t, err)

	assert.Equal(t, "Spaghetti carbonara", updated.Title)
	assert.Equal(t, "https://example.com/carbonara", updated.Link)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, []string{"Eggs"}, ingredientNames(updated))
	assert.Equal(t, user.ID, updated.UserID)
}

func TestFullUpdateKeepsAbsentOptionalFields(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	req := sampleRecipe("Cake", nil, nil)
	req.Description = strPtr("Rich and dark")
	req.Link = strPtr("https://example.com/cake")
	recipe, err := f.recipes.Create(ctx, user.ID, req)
	require.NoError(t, err)

	updated, err := f.recipes.Update(ctx, user.ID, recipe.ID, sampleRecipe("Chocolate cake", nil, nil), false)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate cake", updated.Title)
	assert.Equal(t, "Rich and dark", updated.Description)
	assert.Equal(t, "https://example.com/cake", updated.Link)

	clear := sampleRecipe("Chocolate cake", nil, nil)
	clear.Description = strPtr("")
	clear.Link = strPtr("")
	updated, err = f.recipes.Update(ctx, user.ID, recipe.ID, clear, false)
	require.NoError(t, err)
	assert.Empty(t, updated.Description)
	assert.Empty(t, updated.Link)
}

func TestFullUpdateRequiresScalars(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Cake", nil, nil))
	require.NoError(t, err)

	_, err = f.recipes.Update(ctx, user.ID, recipe.ID, &types.RecipeRequest{Title: strPtr("Only title")}, false)
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "price")
}

func TestDeleteRecipeKeepsTagsAndReleasesImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Toast", refs("Breakfast"), nil))
	require.NoError(t, err)
	withImage, err := f.recipes.UploadImage(ctx, user.ID, recipe.ID, pngBytes(t))
	require.NoError(t, err)
	path := f.media.Path(withImage.Image)
	require.FileExists(t, path)

	require.NoError(t, f.recipes.Delete(ctx, user.ID, recipe.ID))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	tags, err := f.tags.List(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Toast", nil, nil))
	require.NoError(t, err)

	first, err := f.recipes.UploadImage(ctx, user.ID, recipe.ID, pngBytes(t))
	require.NoError(t, err)
	assert.Regexp(t, `^uploads/recipe/[0-9a-f-]+\.png$`, first.Image)
	firstPath := f.media.Path(first.Image)

	second, err := f.recipes.UploadImage(ctx, user.ID, recipe.ID, pngBytes(t))
	require.NoError(t, err)
	assert.NotEqual(t, first.Image, second.Image)
	assert.FileExists(t, f.media.Path(second.Image))
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, "/media/"+second.Image, f.recipes.ImageURL(second))
	assert.Empty(t, f.recipes.ImageURL(&models.Recipe{}))
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	user := newUser(t, f, "cook@example.com")
	recipe, err := f.recipes.Create(ctx, user.ID, sampleRecipe("Toast", nil, nil))
	require.NoError(t, err)

	_, err = f.recipes.UploadImage(ctx, user.ID, recipe.ID, []byte("notanimage"))
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")

	got, err := f.recipes.Get(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)

	other := newUser(t, f, "other@example.com")
	_, err = f.recipes.UploadImage(ctx, other.ID, recipe.ID, pngBytes(t))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestChocolateCheesecakeScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	alice := newUser(t, f, "a@example.com")
	bob := newUser(t, f, "b@example.com")

	recipe, err := f.recipes.Create(ctx, alice.ID, sampleRecipe("Chocolate cheesecake", refs("vegan", "dessert"), nil))
	require.NoError(t, err)
	require.Len(t, recipe.Tags, 2)

	bobs, err := f.recipes.List(ctx, bob.ID, repository.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, bobs)

	var veganID uint
	for _, tag := range recipe.Tags {
		if tag.Name == "vegan" {
			veganID = tag.ID
		}
	}
	filtered, err := f.recipes.List(ctx, alice.ID, service.BuildRecipeFilter(fmtID(veganID), ""))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, recipe.ID, filtered[0].ID)
}
