package models

// SalaryRecord is one row of the salary trends dataset. Columns holds every
// column of the source row in header order so the raw table can show the
// full record; the typed fields are the ones filtering and charting need.
type SalaryRecord struct {
	ID              uint              `gorm:"primaryKey" json:"-"`
	WorkYear        string            `gorm:"type:text" json:"work_year,omitempty"`
	JobTitle        string            `gorm:"type:text;index" json:"job_title"`
	CompanyLocation string            `gorm:"type:text;index" json:"company_location"`
	ExperienceLevel string            `gorm:"type:text" json:"experience_level"`
	SalaryInUSD     float64           `gorm:"type:numeric" json:"salary_in_usd"`
	Columns         map[string]string `gorm:"-" json:"-"`
}

func (SalaryRecord) TableName() string {
	return "salary_records"
}
