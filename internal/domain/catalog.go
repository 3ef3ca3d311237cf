package domain

// Tag — справочник меток рецептов. Редактируется администратором,
// рецепты только ссылаются на него.
type Tag struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:15;uniqueIndex;not null"`
	Color string `json:"color" gorm:"size:7;default:#ffffff"`
	Slug  string `json:"slug" gorm:"size:15;uniqueIndex;not null"`
}

func (Tag) TableName() string {
	return "tags"
}

// Ingredient — справочник ингредиентов с единицей измерения.
type Ingredient struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:100;not null;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:15;not null"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
