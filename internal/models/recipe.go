package models

import (
	"time"
)

// Recipe is owned by exactly one user. Tags and ingredients are shared
// references to the same user's attribute rows.
type Recipe struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       Price        `gorm:"type:numeric(5,2);not null" json:"price"`
	Description string       `gorm:"size:255;not null;default:''" json:"description"`
	Link        string       `gorm:"size:255;not null;default:''" json:"link"`
	Image       string       `gorm:"size:255;not null;default:''" json:"image"`
	Tags        []Tag        `gorm:"many2many:recipe_tags" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients" json:"ingredients"`
}

// Tag is a per-user label. (user_id, name) is unique.
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_user_name,priority:1" json:"-"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name,priority:2" json:"name"`
}

// Ingredient is a per-user ingredient name. (user_id, name) is unique.
type Ingredient struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ingredients_user_name,priority:1" json:"-"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name,priority:2" json:"name"`
}

// Attribute is the column shape shared by tags and ingredients. Repository
// code reads and writes it against the table named by an AttrKind.
type Attribute struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UserID    uint
	Name      string
}

// AttrKind describes where one attribute type lives and how it joins recipes.
type AttrKind struct {
	Name       string
	Table      string
	JoinTable  string
	JoinColumn string
}

var (
	TagKind = AttrKind{
		Name:       "tag",
		Table:      "tags",
		JoinTable:  "recipe_tags",
		JoinColumn: "tag_id",
	}
	IngredientKind = AttrKind{
		Name:       "ingredient",
		Table:      "ingredients",
		JoinTable:  "recipe_ingredients",
		JoinColumn: "ingredient_id",
	}
)

// TagsFromAttributes converts generic rows into tag records.
func TagsFromAttributes(attrs []Attribute) []Tag {
	tags := make([]Tag, len(attrs))
	for i, a := range attrs {
		tags[i] = Tag{ID: a.ID, CreatedAt: a.CreatedAt, UserID: a.UserID, Name: a.Name}
	}
	return tags
}

// IngredientsFromAttributes converts generic rows into ingredient records.
func IngredientsFromAttributes(attrs []Attribute) []Ingredient {
	ings := make([]Ingredient, len(attrs))
	for i, a := range attrs {
		ings[i] = Ingredient{ID: a.ID, CreatedAt: a.CreatedAt, UserID: a.UserID, Name: a.Name}
	}
	return ings
}
