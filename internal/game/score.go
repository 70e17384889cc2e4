package game

import "sort"

// Hand ranks, strongest first.
const (
	RankFiveKind  = "five_of_a_kind"
	RankFourKind  = "four_of_a_kind"
	RankFullHouse = "full_house"
	RankStraight  = "straight"
	RankThreeKind = "three_of_a_kind"
	RankTwoPair   = "two_pair"
	RankPair      = "pair"
	RankHigh      = "high_die"
)

var rankBonus = map[string]int{
	RankFiveKind:  30,
	RankFourKind:  20,
	RankFullHouse: 15,
	RankStraight:  12,
	RankThreeKind: 8,
	RankTwoPair:   5,
	RankPair:      2,
	RankHigh:      0,
}

// Score is the outcome of ranking a hand.
type Score struct {
	Rank   string
	Used   []int
	Damage int
}

// Evaluate ranks the hand and picks the dice that form it. Damage is the
// sum of the used dice plus the rank bonus. An empty hand scores nothing.
func Evaluate(values []int) Score {
	if len(values) == 0 {
		return Score{}
	}

	byFace := make(map[int][]int)
	for i, v := range values {
		byFace[v] = append(byFace[v], i)
	}
	groups := make([][]int, 0, len(byFace))
	for _, idx := range byFace {
		groups = append(groups, idx)
	}
	// Larger groups first, higher faces break ties.
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return values[groups[i][0]] > values[groups[j][0]]
	})

	var rank string
	var used []int
	switch top := len(groups[0]); {
	case top >= 5:
		rank, used = RankFiveKind, groups[0][:5]
	case top == 4:
		rank, used = RankFourKind, groups[0]
	case top == 3 && len(groups) > 1 && len(groups[1]) >= 2:
		rank, used = RankFullHouse, append(append([]int{}, groups[0]...), groups[1][:2]...)
	default:
		if s := straight(values); s != nil {
			rank, used = RankStraight, s
		} else if top == 3 {
			rank, used = RankThreeKind, groups[0]
		} else if top == 2 && len(groups) > 1 && len(groups[1]) == 2 {
			rank, used = RankTwoPair, append(append([]int{}, groups[0]...), groups[1]...)
		} else if top == 2 {
			rank, used = RankPair, groups[0]
		} else {
			rank, used = RankHigh, groups[0][:1]
		}
	}

	used = append([]int(nil), used...)
	sort.Ints(used)
	dmg := rankBonus[rank]
	for _, i := range used {
		dmg += values[i]
	}
	return Score{Rank: rank, Used: used, Damage: dmg}
}

// straight returns the indices of five consecutive faces, or nil.
func straight(values []int) []int {
	first := make(map[int]int)
	for i, v := range values {
		if _, ok := first[v]; !ok {
			first[v] = i
		}
	}
	faces := make([]int, 0, len(first))
	for v := range first {
		faces = append(faces, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(faces)))
	for start := 0; start+5 <= len(faces); start++ {
		run := faces[start : start+5]
		if run[0]-run[4] == 4 {
			idx := make([]int, 5)
			for k, v := range run {
				idx[k] = first[v]
			}
			return idx
		}
	}
	return nil
}
