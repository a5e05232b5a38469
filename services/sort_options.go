package services

import (
	"sort"
	"strings"

	"github.com/camden-git/photocatalog/models"
	"github.com/facette/natsort"
)

const (
	SortFilenameAsc = "filename_asc"
	SortFilenameNat = "filename_nat"
	SortDateDesc    = "date_desc"
	SortDateAsc     = "date_asc"
)

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	switch order {
	case SortFilenameAsc, SortDateDesc, SortDateAsc, SortFilenameNat:
		return true
	default:
		return false
	}
}

// SortPhotos orders photos in place. An empty order keeps collection order.
// Photos whose date cannot be parsed sort after all dated photos.
func SortPhotos(photos []models.Photo, order string) {
	switch order {
	case SortFilenameAsc:
		sort.SliceStable(photos, func(i, j int) bool {
			return strings.ToLower(photos[i].Filename) < strings.ToLower(photos[j].Filename)
		})
	case SortFilenameNat:
		sort.SliceStable(photos, func(i, j int) bool {
			return natsort.Compare(strings.ToLower(photos[i].Filename), strings.ToLower(photos[j].Filename))
		})
	case SortDateAsc, SortDateDesc:
		sort.SliceStable(photos, func(i, j int) bool {
			ti, iok := photos[i].ParsedDate()
			tj, jok := photos[j].ParsedDate()
			if iok != jok {
				return iok
			}
			if !iok {
				return false
			}
			if order == SortDateDesc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
	}
}
