package category

// Category is the row shape of the backend "categories" table.
type Category struct {
	ID        string `json:"id" gorm:"column:id;primaryKey"`
	Name      string `json:"name" gorm:"column:name;not null"`
	MinAge    int    `json:"min_age" gorm:"column:min_age;not null;default:0;check:min_age >= 0"`
	SortOrder int    `json:"sort_order" gorm:"column:sort_order;not null;default:0"`
}

func (Category) TableName() string {
	return "categories"
}
