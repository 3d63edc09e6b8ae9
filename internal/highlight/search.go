package highlight

import (
	"cmp"
	"regexp"
	"slices"
	"unicode/utf8"
)

type groupMode int

const (
	groupsWhole groupMode = iota
	groupsAll
	groupsListed
)

// Groups selects which capture groups of a pattern produce matches.
// The zero value selects the whole match (group 0).
type Groups struct {
	mode groupMode
	list []int
}

// WholeMatch selects group 0 only.
func WholeMatch() Groups {
	return Groups{}
}

// AllGroups selects every capture group the pattern defines.
func AllGroups() Groups {
	return Groups{mode: groupsAll}
}

// Only selects the listed group numbers. An empty list is the same as
// AllGroups.
func Only(nums ...int) Groups {
	if len(nums) == 0 {
		return AllGroups()
	}
	list := slices.Clone(nums)
	slices.Sort(list)
	return Groups{mode: groupsListed, list: slices.Compact(list)}
}

// selected returns the group numbers to report for a pattern with n
// capture groups.
func (g Groups) selected(n int) []int {
	switch g.mode {
	case groupsAll:
		out := make([]int, n)
		for i := range out {
			out[i] = i + 1
		}
		return out
	case groupsListed:
		return g.list
	default:
		return []int{0}
	}
}

func (g Groups) String() string {
	switch g.mode {
	case groupsAll:
		return "all"
	case groupsListed:
		return "listed"
	default:
		return "whole"
	}
}

// Spec is a named, prioritized pattern.
type Spec struct {
	Name     string
	Pattern  *regexp.Regexp
	Priority int
	Groups   Groups
}

// Match is one highlighted span. Begin and End are half-open offsets in
// characters (runes), not bytes.
type Match struct {
	Name     string
	Priority int
	Group    int
	Begin    int
	End      int
}

// Search runs every spec over text and returns the matches ordered by
// priority, lowest first. A group's priority is its Spec's Priority plus the
// group number, so sub-group highlights sort after their enclosing match.
// Ties keep spec order, then match order.
func Search(text string, specs []Spec) []Match {
	var out []Match
	offsets := newRuneOffsets(text)
	for _, spec := range specs {
		if spec.Pattern == nil {
			continue
		}
		groups := spec.Groups.selected(spec.Pattern.NumSubexp())
		for _, loc := range spec.Pattern.FindAllStringSubmatchIndex(text, -1) {
			for _, g := range groups {
				if g < 0 || 2*g+1 >= len(loc) {
					continue
				}
				begin, end := loc[2*g], loc[2*g+1]
				if begin < 0 {
					continue
				}
				out = append(out, Match{
					Name:     spec.Name,
					Priority: spec.Priority + g,
					Group:    g,
					Begin:    offsets.at(begin),
					End:      offsets.at(end),
				})
			}
		}
	}
	slices.SortStableFunc(out, func(a, b Match) int {
		return cmp.Compare(a.Priority, b.Priority)
	})
	return out
}

// runeOffsets converts byte offsets to rune offsets. ASCII text needs no
// table.
type runeOffsets struct {
	table []int
}

func newRuneOffsets(text string) runeOffsets {
	if utf8.RuneCountInString(text) == len(text) {
		return runeOffsets{}
	}
	// Regexp match boundaries always fall on the same rune starts that
	// ranging over the string visits.
	table := make([]int, len(text)+1)
	n := 0
	for i := range text {
		table[i] = n
		n++
	}
	table[len(text)] = n
	return runeOffsets{table: table}
}

func (o runeOffsets) at(byteOffset int) int {
	if o.table == nil {
		return byteOffset
	}
	return o.table[byteOffset]
}
