package tasks

import "fmt"

// TaskNotFoundError is returned when a trigger or log request names a
// maintenance task that was never registered with the manager.
type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("no maintenance task registered as %q", e.Name)
}
