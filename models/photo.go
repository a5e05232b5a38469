package models

import "time"

// displayDateLayouts are the layouts accepted for Photo.Date, most specific first.
var displayDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Photo represents a catalogued image.
// Albums holds the ids of the albums the photo belongs to; album records do not list their photos.
type Photo struct {
	ID          int      `json:"id" bson:"id" gorm:"primaryKey;autoIncrement:false"`
	Owner       int      `json:"owner" bson:"owner" gorm:"index;not null"`
	Filename    string   `json:"filename" bson:"filename"`
	Title       string   `json:"title" bson:"title"`
	Description string   `json:"description" bson:"description"`
	Date        string   `json:"date" bson:"date"` // calendar date, YYYY-MM-DD
	Resolution  string   `json:"resolution" bson:"resolution"`
	Tags        []string `json:"tags" bson:"tags" gorm:"serializer:json"`
	Albums      []int    `json:"albums" bson:"albums" gorm:"serializer:json"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

// HasTag reports whether tag is already attached. Matching is exact and case-sensitive.
func (p *Photo) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// InAlbum reports whether the photo lists albumID among its albums.
func (p *Photo) InAlbum(albumID int) bool {
	for _, id := range p.Albums {
		if id == albumID {
			return true
		}
	}
	return false
}

// ParsedDate parses Date. Both plain dates and full timestamps are accepted.
func (p *Photo) ParsedDate() (time.Time, bool) {
	for _, layout := range displayDateLayouts {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DisplayDate formats Date as "January 2, 2006", falling back to the raw value.
func (p *Photo) DisplayDate() string {
	t, ok := p.ParsedDate()
	if !ok {
		return p.Date
	}
	return t.Format("January 2, 2006")
}

// Clone returns a copy that shares no slices with p.
func (p Photo) Clone() Photo {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	if p.Albums != nil {
		p.Albums = append([]int(nil), p.Albums...)
	}
	return p
}
