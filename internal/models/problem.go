package models

import "time"

type Problem struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Title        string    `bson:"title" json:"title"`
	Description  string    `bson:"description" json:"description"`
	Difficulty   string    `bson:"difficulty" json:"difficulty"`
	Categories   []string  `bson:"categories" json:"categories"`
	Requirements []string  `bson:"requirements" json:"requirements"`
	Constraints  []string  `bson:"constraints" json:"constraints"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
