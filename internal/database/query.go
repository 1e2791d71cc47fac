package database

import (
	"slices"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// orderBy returns "<col> <dir>" when col is allowed, else the fallback.
func orderBy(col, dir string, allowed []string, fallback string) string {
	if !slices.Contains(allowed, col) {
		return fallback
	}
	if strings.EqualFold(dir, "asc") {
		return col + " ASC"
	}
	return col + " DESC"
}

func paginate(db *gorm.DB, skip, limit int) *gorm.DB {
	if limit > 0 {
		db = db.Limit(limit)
	}
	if skip > 0 {
		db = db.Offset(skip)
	}
	return db
}

func refStrings(refs []usecase.ImageRef) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(refs))
	for _, r := range refs {
		out = append(out, string(r))
	}
	return out
}

func toRefs(s []string) []usecase.ImageRef {
	out := make([]usecase.ImageRef, 0, len(s))
	for _, r := range s {
		out = append(out, usecase.ImageRef(r))
	}
	return out
}

// jsonStrings never yields a nil slice, which would be stored as JSON null.
func jsonStrings(s []string) datatypes.JSONSlice[string] {
	if s == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](s)
}
