package units

// Reserved squad ids. Companies use "1".."8".
const (
	SquadUnassigned = "unassigned"
	SquadPlayer     = "player"
)

// Squad is a named group of unit ids. All state beyond membership (scores,
// positions) is looked up through the tracker at read time so a squad can
// never disagree with the authoritative unit set for long.
type Squad struct {
	ID      string
	Name    string
	Weight  float64
	members map[int]struct{}
}

func newSquad(id, name string, weight float64) *Squad {
	return &Squad{ID: id, Name: name, Weight: weight, members: make(map[int]struct{})}
}

// Size returns the member count.
func (s *Squad) Size() int { return len(s.members) }

func (s *Squad) has(id int) bool {
	_, ok := s.members[id]
	return ok
}
