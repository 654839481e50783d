package settings

// Settings is the row shape of the backend "settings" table.
type Settings struct {
	Key   string `json:"key" db:"key"`
	Value string `json:"value" db:"value"`
}
