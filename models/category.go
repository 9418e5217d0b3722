package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Category struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string             `json:"-" bson:"userId"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Hue         int                `json:"hue" bson:"hue"`
}

// HuePalette is the fixed set of hues assigned to categories. Seeding and
// reconciliation both draw from it at random.
var HuePalette = [9]int{0, 30, 60, 120, 170, 200, 240, 280, 320}

// DefaultCategories is the seed set written once for a new user. Descriptions
// double as disambiguation context for the extraction model.
var DefaultCategories = []Category{
	{Name: "Work", Description: "Job, meetings, deadlines and professional tasks"},
	{Name: "Personal", Description: "Errands, appointments and everything self-related"},
	{Name: "Groceries", Description: "Food and household shopping"},
	{Name: "Health", Description: "Exercise, medication, doctor visits"},
	{Name: "Finance", Description: "Bills, payments, budgeting and banking"},
	{Name: "Home", Description: "Chores, repairs and home improvement"},
	{Name: "Family", Description: "Kids, relatives, social commitments"},
	{Name: "Learning", Description: "Reading, courses and skills to pick up"},
}
