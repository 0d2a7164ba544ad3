package entities

type LeaveTypeCount struct {
	ID         uint64 `db:"id"`
	LeaveType  string `db:"leave_type"`
	LeaveCount int    `db:"leave_count"`
}

type UserLeaveCount struct {
	ID         uint64 `db:"id"`
	EmpID      string `db:"emp_id"`
	LeaveType  string `db:"leave_type"`
	LeaveCount int    `db:"leave_count"`
}
