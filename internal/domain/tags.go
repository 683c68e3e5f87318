package domain

import "slices"

// Tag ids shared with the upstream catalog.
const (
	TagNew        = 1
	TagVintage    = 2
	TagFanVersion = 3

	TagLaLiga     = 4
	TagPremier    = 5
	TagSerieA     = 6
	TagBundesliga = 7
	TagLigue1     = 8

	TagClubs     = 9
	TagNational  = 10
	TagChampions = 11
)

// Leagues maps league keys to their tag ids, in the order used when
// deriving a league from a tag set.
var Leagues = []struct {
	Key string
	Tag int
}{
	{"laLiga", TagLaLiga},
	{"premier", TagPremier},
	{"serieA", TagSerieA},
	{"bundesliga", TagBundesliga},
	{"ligue1", TagLigue1},
}

// TypeFromTags derives the jersey type; fan version wins over vintage.
func TypeFromTags(ids []int) string {
	t := TypeNew
	if slices.Contains(ids, TagVintage) {
		t = TypeVintage
	}
	if slices.Contains(ids, TagFanVersion) {
		t = TypeFanVersion
	}
	return t
}

func CategoryFromTags(ids []int) string {
	if slices.Contains(ids, TagNational) {
		return CategoryNational
	}
	return CategoryClubs
}

func LeagueFromTags(ids []int) string {
	for _, l := range Leagues {
		if slices.Contains(ids, l.Tag) {
			return l.Key
		}
	}
	return ""
}

// DeriveTags builds a tag set from the descriptive fields. Products created
// through the admin overlay carry no tags of their own.
func DeriveTags(p Product) []int {
	var ids []int
	switch p.Type {
	case TypeVintage:
		ids = append(ids, TagVintage)
	case TypeFanVersion:
		ids = append(ids, TagFanVersion)
	default:
		ids = append(ids, TagNew)
	}
	for _, l := range Leagues {
		if l.Key == p.League {
			ids = append(ids, l.Tag)
			break
		}
	}
	if p.Category == CategoryNational {
		ids = append(ids, TagNational)
	} else {
		ids = append(ids, TagClubs)
	}
	if p.Featured {
		ids = append(ids, TagChampions)
	}
	return ids
}
