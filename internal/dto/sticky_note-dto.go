package dto

type CreateStickyNoteDTO struct {
	Note  string `json:"note" validate:"required,max=2000"`
	EmpID string `json:"emp_id" validate:"omitempty,emp_id"`
}

type StickyNoteDTO struct {
	ID        uint64 `json:"id"`
	Note      string `json:"note"`
	EmpID     string `json:"emp_id"`
	CreatedAt string `json:"created_at"`
}
