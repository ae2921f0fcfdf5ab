package league

import "fmt"

// League is a scraped league (APTA Chicago, NSTF, ...) identified by its code.
type League struct {
	ID   int64
	Code string
	Name string
}

func (l League) Validate() error {
	if l.Code == "" {
		return fmt.Errorf("league code is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
