package models

import "strings"

// Album is a named grouping of photos. Membership lives on Photo.Albums.
type Album struct {
	ID   int    `json:"id" bson:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" bson:"name" gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}

// MatchesName compares names case-insensitively.
func (a *Album) MatchesName(name string) bool {
	return strings.EqualFold(a.Name, name)
}
