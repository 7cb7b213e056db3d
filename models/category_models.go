package models

// Category is a localized category entry; Name carries the name in the
// requested language.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryNames carries both localizations, used in profile responses.
type CategoryNames struct {
	ID     int64  `json:"id"`
	EnName string `json:"en_name"`
	CzName string `json:"cz_name"`
}
