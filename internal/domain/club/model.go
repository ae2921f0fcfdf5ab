package club

import "fmt"

type Club struct {
	ID           int64
	LeagueID     int64
	Name         string
	Address      string
	LogoFilename string
}

func (c Club) Validate() error {
	if c.LeagueID <= 0 {
		return fmt.Errorf("club league id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}
