package series

import "fmt"

// Series is a competitive division inside a league. Name is the identity, DisplayName is
// derived by the league's naming rule and may change between runs.
type Series struct {
	ID          int64
	LeagueID    int64
	Name        string
	DisplayName string
}

func (s Series) Validate() error {
	if s.LeagueID <= 0 {
		return fmt.Errorf("series league id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("series name is required")
	}

	return nil
}
