package entities

import "time"

type StickyNote struct {
	ID        uint64    `db:"id"`
	Note      string    `db:"note"`
	EmpID     string    `db:"emp_id"`
	CreatedAt time.Time `db:"created_at"`
}
