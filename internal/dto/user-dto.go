package dto

import "io"

// FileUpload is an uploaded file detached from the transport.
type FileUpload struct {
	Reader   io.Reader
	Filename string
	Size     int64
}

type RegisterUserDTO struct {
	Username  string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password  string `json:"password" form:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email     string `json:"email" form:"email" validate:"required,email,max=255"`
	TeamID    uint64 `json:"team_id" form:"team_id" validate:"required,gt=0"`

	Gender                     string `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	BloodGroup                 string `json:"blood_group" form:"blood_group" validate:"omitempty,max=5"`
	MobileNumber               string `json:"mobile_number" form:"mobile_number" validate:"omitempty,phone"`
	EmergencyContactNumber     string `json:"emergency_contact_number" form:"emergency_contact_number" validate:"omitempty,phone"`
	EmergencyContactPersonInfo string `json:"emergency_contact_person_info" form:"emergency_contact_person_info" validate:"omitempty,max=500"`
	Address                    string `json:"address" form:"address" validate:"omitempty,max=500"`
	Dob                        string `json:"dob" form:"dob" validate:"omitempty,datetime=2006-01-02"`
	Designation                string `json:"designation" form:"designation" validate:"omitempty,max=100"`
	DesignationType            string `json:"designation_type" form:"designation_type" validate:"omitempty,max=100"`
	JoiningDate                string `json:"joining_date" form:"joining_date" validate:"omitempty,datetime=2006-01-02"`
	Experience                 string `json:"experience" form:"experience" validate:"omitempty,max=100"`
	CompletedProjects          *int   `json:"completed_projects" form:"-" validate:"omitempty,gte=0"`
	Performance                string `json:"performance" form:"performance" validate:"omitempty,max=100"`
	Teams                      string `json:"teams" form:"teams" validate:"omitempty,max=255"`
	ClientReport               string `json:"client_report" form:"client_report" validate:"omitempty,max=2000"`
}

// UpdateProfileDTO carries a partial update keyed by column name.
type UpdateProfileDTO struct {
	Fields   map[string]interface{}
	PublicID string
}

type UserDTO struct {
	EmpID                      string  `json:"emp_id"`
	Username                   string  `json:"username"`
	FirstName                  string  `json:"first_name"`
	LastName                   string  `json:"last_name"`
	Email                      string  `json:"email"`
	Gender                     *string `json:"gender"`
	ProfilePicture             *string `json:"profile_picture"`
	ProfilePublicID            *string `json:"public_id"`
	BloodGroup                 *string `json:"blood_group"`
	MobileNumber               *string `json:"mobile_number"`
	EmergencyContactNumber     *string `json:"emergency_contact_number"`
	EmergencyContactPersonInfo *string `json:"emergency_contact_person_info"`
	Address                    *string `json:"address"`
	Dob                        *string `json:"dob"`
	Designation                *string `json:"designation"`
	DesignationType            *string `json:"designation_type"`
	JoiningDate                *string `json:"joining_date"`
	Experience                 *string `json:"experience"`
	CompletedProjects          *int    `json:"completed_projects"`
	Performance                *string `json:"performance"`
	Teams                      *string `json:"teams"`
	ClientReport               *string `json:"client_report"`
	Role                       string  `json:"role"`
	CreatedAt                  string  `json:"created_at"`
	UpdatedAt                  string  `json:"updated_at"`
}

type EmployeeIDDTO struct {
	EmpID string `json:"emp_id"`
	Name  string `json:"name"`
}

type LeaveCountDTO struct {
	LeaveType  string `json:"leave_type"`
	LeaveCount int    `json:"leave_count"`
}
