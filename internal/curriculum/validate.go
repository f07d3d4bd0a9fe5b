package curriculum

import (
	"fmt"
	"strings"

	"github.com/abhisek/lingo/internal/apperr"
)

// Validate performs the structural checks the JSON schema cannot express.
// It returns one error listing every problem found, or nil.
func Validate(c *Course) error {
	var errs []string

	if c.ID <= 0 {
		errs = append(errs, fmt.Sprintf("course id must be positive, got %d", c.ID))
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, fmt.Sprintf("course %d has no title", c.ID))
	}

	unitIDs := make(map[int64]bool)
	lessonIDs := make(map[int64]bool)
	challengeIDs := make(map[int64]bool)
	optionIDs := make(map[int64]bool)

	unitOrders := make(map[int]bool)
	for _, u := range c.Units {
		if unitIDs[u.ID] {
			errs = append(errs, fmt.Sprintf("duplicate unit id %d", u.ID))
		}
		unitIDs[u.ID] = true
		if u.Order <= 0 || unitOrders[u.Order] {
			errs = append(errs, fmt.Sprintf("unit %d: order %d must be positive and unique within the course", u.ID, u.Order))
		}
		unitOrders[u.Order] = true

		lessonOrders := make(map[int]bool)
		for _, l := range u.Lessons {
			if lessonIDs[l.ID] {
				errs = append(errs, fmt.Sprintf("duplicate lesson id %d", l.ID))
			}
			lessonIDs[l.ID] = true
			if l.Order <= 0 || lessonOrders[l.Order] {
				errs = append(errs, fmt.Sprintf("lesson %d: order %d must be positive and unique within unit %d", l.ID, l.Order, u.ID))
			}
			lessonOrders[l.Order] = true

			challengeOrders := make(map[int]bool)
			for _, ch := range l.Challenges {
				if challengeIDs[ch.ID] {
					errs = append(errs, fmt.Sprintf("duplicate challenge id %d", ch.ID))
				}
				challengeIDs[ch.ID] = true
				if ch.Order <= 0 || challengeOrders[ch.Order] {
					errs = append(errs, fmt.Sprintf("challenge %d: order %d must be positive and unique within lesson %d", ch.ID, ch.Order, l.ID))
				}
				challengeOrders[ch.Order] = true
				if !ch.Type.Valid() {
					errs = append(errs, fmt.Sprintf("challenge %d: unknown type %q", ch.ID, ch.Type))
				}
				if len(ch.Options) == 0 {
					errs = append(errs, fmt.Sprintf("challenge %d has no options", ch.ID))
				} else if _, err := ch.CorrectOption(); err != nil {
					errs = append(errs, err.Error())
				}
				for _, o := range ch.Options {
					if optionIDs[o.ID] {
						errs = append(errs, fmt.Sprintf("duplicate option id %d", o.ID))
					}
					optionIDs[o.ID] = true
				}
			}
		}
	}

	if len(errs) > 0 {
		return apperr.Validation("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
