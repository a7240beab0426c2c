package profile

// WeekdayAvailability records which days of the week an owner takes jobs.
type WeekdayAvailability struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// CountSelected returns the number of available days.
func (a WeekdayAvailability) CountSelected() int {
	count := 0
	for _, day := range []bool{a.Monday, a.Tuesday, a.Wednesday, a.Thursday, a.Friday, a.Saturday, a.Sunday} {
		if day {
			count++
		}
	}
	return count
}

// TimeSlotAvailability records the parts of the day an owner takes jobs.
type TimeSlotAvailability struct {
	Morning   bool `json:"morning"`   // 6am-12pm
	Afternoon bool `json:"afternoon"` // 12pm-5pm
	Evening   bool `json:"evening"`   // 5pm-10pm
}

// CountSelected returns the number of available time slots.
func (a TimeSlotAvailability) CountSelected() int {
	count := 0
	for _, slot := range []bool{a.Morning, a.Afternoon, a.Evening} {
		if slot {
			count++
		}
	}
	return count
}

// NotificationPreferences records a customer's opted-in channels.
type NotificationPreferences struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// SavedAddresses holds a customer's frequently used addresses.
type SavedAddresses struct {
	Home  string   `json:"home,omitempty"`
	Work  string   `json:"work,omitempty"`
	Other []string `json:"other,omitempty"`
}
