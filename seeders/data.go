package seeders

var defaultLeaveTypes = []struct {
	LeaveType string
	Count     int
}{
	{LeaveType: "casual", Count: 12},
	{LeaveType: "sick", Count: 8},
	{LeaveType: "earned", Count: 15},
	{LeaveType: "unpaid", Count: 0},
}

var defaultTeams = []string{
	"Management",
	"Human Resources",
	"Engineering",
	"Quality Assurance",
	"Design",
}

const (
	adminUsername  = "admin"
	adminEmail     = "admin@example.com"
	adminTeam      = "Management"
	adminFirstName = "System"
	adminLastName  = "Administrator"
)
