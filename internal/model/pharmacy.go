package model

// Pharmacy is a dispensing pharmacy. IsOnDuty marks out-of-hours service.
type Pharmacy struct {
	ID        int64   `db:"id" json:"id" yaml:"-"`
	Name      string  `db:"name" json:"name" yaml:"name"`
	Address   string  `db:"address" json:"address" yaml:"address"`
	Phone     string  `db:"phone" json:"phone" yaml:"phone"`
	IsOnDuty  bool    `db:"is_on_duty" json:"is_on_duty" yaml:"is_on_duty"`
	Latitude  float64 `db:"latitude" json:"latitude" yaml:"latitude"`
	Longitude float64 `db:"longitude" json:"longitude" yaml:"longitude"`
}
