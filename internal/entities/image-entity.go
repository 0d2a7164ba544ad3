package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

const ImagePurposeProfile = "profile"

type Image struct {
	ID           uint64      `db:"id"`
	Purpose      string      `db:"purpose"`
	URL          string      `db:"url"`
	PublicID     string      `db:"public_id"`
	EmpID        string      `db:"emp_id"`
	OriginalName null.String `db:"original_name"`
	CreatedAt    time.Time   `db:"created_at"`
}
