package entities

import (
	"employee-management/pkg/types"

	"github.com/aarondl/null/v8"
)

type User struct {
	EmpID     string `db:"emp_id"`
	Username  string `db:"username"`
	Password  string `db:"password"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`

	Gender                     null.String `db:"gender"`
	ProfilePicture             null.String `db:"profile_picture"`
	BloodGroup                 null.String `db:"blood_group"`
	MobileNumber               null.String `db:"mobile_number"`
	EmergencyContactNumber     null.String `db:"emergency_contact_number"`
	EmergencyContactPersonInfo null.String `db:"emergency_contact_person_info"`
	Address                    null.String `db:"address"`
	Dob                        null.String `db:"dob"`
	Designation                null.String `db:"designation"`
	DesignationType            null.String `db:"designation_type"`
	JoiningDate                null.String `db:"joining_date"`
	Experience                 null.String `db:"experience"`
	CompletedProjects          null.Int    `db:"completed_projects"`
	Performance                null.String `db:"performance"`
	Teams                      null.String `db:"teams"`
	ClientReport               null.String `db:"client_report"`

	Role     string      `db:"role"`
	JWTToken null.String `db:"jwt_token"`
	OTP      null.Int    `db:"otp"`

	// ProfilePublicID is the storage id of the latest profile image, if any.
	ProfilePublicID null.String `db:"-"`

	types.BaseEntity
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// EmployeeRef is one row of the employee directory.
type EmployeeRef struct {
	EmpID string `db:"emp_id"`
	Name  string `db:"name"`
}
