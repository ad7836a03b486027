package validate

import (
	"fmt"
	"strings"

	"github.com/sandilya-stack/coach-server/internal/model"
)

// Identity providers hand out opaque ids (Firebase uids are 28 chars); accept the URL-safe set.
var idRx = model.IDPattern

func NonEmpty(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ID validates a user, session or tip id path parameter.
func ID(field, v string) error {
	if err := NonEmpty(field, v); err != nil {
		return err
	}
	if !idRx.MatchString(v) {
		return fmt.Errorf("%s must match %s", field, idRx.String())
	}
	return nil
}

// -------- Request specific helpers ----------

func CreateSession(text string, maxLen int) error {
	if err := NonEmpty("text", text); err != nil {
		return err
	}
	if maxLen > 0 && len([]rune(strings.TrimSpace(text))) > maxLen {
		return fmt.Errorf("text exceeds %d characters", maxLen)
	}
	return nil
}

func Swipe(direction string) (model.SwipeDirection, error) {
	if err := NonEmpty("direction", direction); err != nil {
		return "", err
	}
	d := model.SwipeDirection(direction)
	if !d.Valid() {
		return "", fmt.Errorf("direction must be %q or %q", model.SwipeLeft, model.SwipeRight)
	}
	return d, nil
}
